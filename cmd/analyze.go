package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/pr-impact/pkg/analyzer"
	"github.com/helmcode/pr-impact/pkg/formatter"
	"github.com/helmcode/pr-impact/pkg/llm"
	"github.com/helmcode/pr-impact/pkg/model"
	"github.com/helmcode/pr-impact/pkg/session"
	"github.com/helmcode/pr-impact/pkg/tui"
)

type analyzeOptions struct {
	repo         string
	pr           string
	token        string
	provider     string
	model        string
	apiKey       string
	filterMode   string
	brd          string
	brdFile      string
	outputFormat string
	interactive  bool
}

func NewAnalyzeCmd(app *App) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the impact of a pull request and generate QA test cases",
		Long: `Send a pull request to the impact analysis service and render the
returned report: summary, impacted features and code, risk hotspots, and a
checklist of QA scenarios whose progress is remembered across runs.

Examples:
  # Analyze PR 42 using GITHUB_TOKEN and OPENROUTER_API_KEY from the environment
  pr-impact analyze --repo acme/shop --pr 42

  # Use OpenAI and attach a business requirements document
  pr-impact analyze --repo acme/shop --pr 42 --provider openai --model gpt-4o --brd-file brd.txt

  # Open the interactive checklist while the analysis runs
  pr-impact analyze --repo acme/shop --pr 42 --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "GitHub repository (owner/name); defaults to defaults.repo from config")
	cmd.Flags().StringVar(&opts.pr, "pr", "", "Pull request number")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", fmt.Sprintf("AI provider (%s)", providerList()))
	cmd.Flags().StringVar(&opts.model, "model", "", "AI model to use (overrides default)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "AI provider API key (defaults to the provider's *_API_KEY variable)")
	cmd.Flags().StringVar(&opts.filterMode, "filter-mode", "", "Which changes to analyze (all, changed, relevant)")
	cmd.Flags().StringVar(&opts.brd, "brd", "", "Business requirements text to weigh the analysis against")
	cmd.Flags().StringVar(&opts.brdFile, "brd-file", "", "Read business requirements from a file")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Show the interactive checklist")
	cmd.MarkFlagsMutuallyExclusive("brd", "brd-file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, app *App, opts *analyzeOptions) error {
	if !formatter.ValidFormat(opts.outputFormat) {
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", opts.outputFormat)
	}
	req, err := buildRequest(app, opts)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid analysis request:\n%w", err)
	}

	kv, s, err := app.loadLast(true)
	if err != nil {
		return err
	}

	cfg := app.config()
	client := analyzer.New(cfg.BackendURL,
		analyzer.WithTimeout(cfg.Timeout),
		analyzer.WithLogger(app.log()),
	)

	if opts.interactive {
		return tui.Run(cmd.Context(), s, tui.Options{
			Submitter:     client,
			Request:       &req,
			SubmitOnStart: true,
			OnReport: func(r *model.AnalysisReport) {
				if err := session.SaveLast(kv, r); err != nil {
					app.log().Warn("Failed to archive report", zap.Error(err))
				}
			},
		})
	}

	if opts.outputFormat == formatter.FormatHuman {
		printHeader(app, req)
	}

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(app.ErrOut))
	sp.Suffix = " Analyzing pull request..."
	sp.Start()
	err = s.Submit(cmd.Context(), client, req)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	app.printSuccess("Analysis complete")

	if err := session.SaveLast(kv, s.Report()); err != nil {
		app.log().Warn("Failed to archive report", zap.Error(err))
	}
	return formatter.Display(app.Out, formatter.NewView(s), opts.outputFormat)
}

// buildRequest fills the request from flags, then environment, then config
// defaults.
func buildRequest(app *App, opts *analyzeOptions) (model.AnalysisRequest, error) {
	defaults := app.config().Defaults

	repo := firstNonEmpty(opts.repo, defaults.Repo)
	token := firstNonEmpty(opts.token, os.Getenv("GITHUB_TOKEN"))

	var defaultProvider llm.Provider
	if defaults.Provider != "" {
		p, err := llm.ParseProvider(defaults.Provider)
		if err != nil {
			return model.AnalysisRequest{}, fmt.Errorf("defaults.provider: %w", err)
		}
		defaultProvider = p
	}
	settings, err := llm.Resolve(opts.provider, opts.model, opts.apiKey, llm.Settings{
		Provider: defaultProvider,
		Model:    defaults.Model,
	})
	if err != nil {
		return model.AnalysisRequest{}, err
	}

	mode, err := model.ParseFilterMode(firstNonEmpty(opts.filterMode, defaults.FilterMode))
	if err != nil {
		return model.AnalysisRequest{}, err
	}

	brd := opts.brd
	if opts.brdFile != "" {
		b, err := os.ReadFile(opts.brdFile)
		if err != nil {
			return model.AnalysisRequest{}, fmt.Errorf("failed to read BRD file: %w", err)
		}
		brd = string(b)
	}

	return model.AnalysisRequest{
		Repo:       strings.TrimSpace(repo),
		PR:         strings.TrimPrefix(strings.TrimSpace(opts.pr), "#"),
		Token:      token,
		Provider:   string(settings.Provider),
		Model:      settings.Model,
		APIKey:     settings.APIKey,
		FilterMode: mode,
		BRDText:    brd,
	}, nil
}

func providerList() string {
	names := make([]string, 0, len(llm.AvailableProviders()))
	for _, p := range llm.AvailableProviders() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func printHeader(app *App, req model.AnalysisRequest) {
	cyan := color.New(color.FgCyan, color.Bold)
	w := app.ErrOut
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🔍 PR Impact Analyzer")
	fmt.Fprintf(w, "📦 Repository: %s\n", req.Repo)
	fmt.Fprintf(w, "🔀 Pull Request: #%s\n", req.PR)
	fmt.Fprintf(w, "🤖 Provider: %s (%s)\n", req.Provider, req.Model)
	fmt.Fprintf(w, "📊 Filter: %s\n", req.FilterMode)
	if req.BRDText != "" {
		fmt.Fprintln(w, "📄 Business requirements attached")
	}
	fmt.Fprintln(w)
}
