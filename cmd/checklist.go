package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/helmcode/pr-impact/pkg/formatter"
	"github.com/helmcode/pr-impact/pkg/session"
	"github.com/helmcode/pr-impact/pkg/tui"
)

var errNoChecklist = errors.New("the last report has no QA scenarios, so there is no checklist")

func NewShowCmd(app *App) *cobra.Command {
	var (
		expand       []string
		outputFormat string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the last analysis report with its checklist",
		Long: `Render the most recent analysis report together with the saved
completion state of its QA scenarios.

Examples:
  # Show the report
  pr-impact show

  # Include steps and expected results for two test cases
  pr-impact show --expand TC001 --expand TC003

  # Machine-readable output
  pr-impact show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !formatter.ValidFormat(outputFormat) {
				return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", outputFormat)
			}
			_, s, err := app.loadLast(true)
			if err != nil {
				return err
			}
			for _, id := range expand {
				s.ToggleExpansion(id)
			}
			return formatter.Display(app.Out, formatter.NewView(s), outputFormat)
		},
	}
	cmd.Flags().StringSliceVarP(&expand, "expand", "e", nil, "Test case ids to show in detail")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

func NewToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID...",
		Short: "Mark test cases as completed, or reopen them",
		Long: `Flip the completed state of one or more test cases of the last report.
The state is saved and restored whenever the same set of scenarios is shown again.

Examples:
  pr-impact toggle TC001 TC004`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := app.loadLast(false)
			if err != nil {
				return err
			}
			if _, ok := s.Key(); !ok {
				return errNoChecklist
			}
			ids := s.Report().ScenarioIDs()
			for _, id := range args {
				if !slices.Contains(ids, id) {
					return fmt.Errorf("unknown test case %q (available: %s)", id, strings.Join(ids, ", "))
				}
			}

			for _, id := range args {
				if s.ToggleCompletion(id) {
					color.New(color.FgGreen).Fprintf(app.Out, "✓ %s completed\n", id)
				} else {
					fmt.Fprintf(app.Out, "○ %s reopened\n", id)
				}
			}
			fmt.Fprintln(app.Out, formatter.ProgressLine(s.Progress(), 20))
			return nil
		},
	}
}

func NewProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Print checklist progress of the last report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := app.loadLast(false)
			if err != nil {
				return err
			}
			p := s.Progress()
			fmt.Fprintf(app.Out, "%d%% %d/%d\n", p.Percent, p.Completed, p.Total)
			return nil
		},
	}
}

func NewQueryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "query TEXT",
		Short: "Attach a follow-up question to the last report",
		Long: `Record a refinement question about the last report. The question is
shown with the report; checklist progress is kept.

Examples:
  pr-impact query "what about the mobile checkout flow?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("query text is empty")
			}
			kv, s, err := app.loadLast(false)
			if err != nil {
				return err
			}

			s.AttachQuery(text)
			if err := session.SaveLast(kv, s.Report()); err != nil {
				return err
			}
			return formatter.Display(app.Out, formatter.NewView(s), formatter.FormatHuman)
		},
	}
}

func NewReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Work through the checklist of the last report interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errors.New("review needs an interactive terminal; use 'pr-impact show' and 'pr-impact toggle' instead")
			}
			_, s, err := app.loadLast(true)
			if err != nil {
				return err
			}
			app.log().Debug("Starting interactive review", zap.Stringer("phase", s.Phase()))
			return tui.Run(cmd.Context(), s, tui.Options{})
		},
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
