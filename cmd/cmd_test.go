package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/pr-impact/pkg/model"
	"github.com/helmcode/pr-impact/pkg/session"
)

const reportBody = `{
  "summary": "Adds coupon support to checkout.",
  "features_impacted": ["Checkout"],
  "modules_impacted": ["payments"],
  "code_symbols_impacted": {"src/coupon.py": ["apply_coupon"], "src/cart.py": "(unknown symbols)"},
  "risk_hotspots": [{"file": "src/coupon.py", "reason": "Discount math", "severity": "High", "likelihood": "Medium"}],
  "qa_scenarios": [
    {"title": "Verify coupon applies", "objective": "Discount is subtracted", "steps": ["Apply SAVE10"], "expected": "Total drops", "priority": "High"},
    {"title": "Reject expired coupon", "objective": "Expired codes fail", "steps": ["Apply OLD"], "expected": "Error shown", "priority": "Low"}
  ],
  "overallRisk": "High"
}`

type backend struct {
	*httptest.Server
	hits atomic.Int32

	mu     sync.Mutex
	status int
	last   model.AnalysisRequest
}

func (b *backend) setStatus(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = code
}

func (b *backend) lastRequest() model.AnalysisRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{status: http.StatusOK}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		assert.Equal(t, "/analyze", r.URL.Path)
		var req model.AnalysisRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		b.last = req
		status := b.status
		b.mu.Unlock()

		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(reportBody))
			return
		}
		_, _ = w.Write([]byte(`{"detail":"upstream failed"}`))
	}))
	t.Cleanup(b.Close)
	return b
}

// setupEnv points configuration at a fresh state directory and the given backend.
func setupEnv(t *testing.T, backendURL string) string {
	t.Helper()
	color.NoColor = true
	stateDir := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv("PR_IMPACT_STATE_DIR", stateDir)
	t.Setenv("PR_IMPACT_BACKEND_URL", backendURL)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("LLM_PROVIDER", "")
	return stateDir
}

func newTestRoot(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:               "pr-impact",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.Setup,
	}
	root.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "")
	root.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "")
	root.AddCommand(
		NewAnalyzeCmd(app),
		NewShowCmd(app),
		NewToggleCmd(app),
		NewProgressCmd(app),
		NewQueryCmd(app),
		NewReviewCmd(app),
	)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := &App{Out: &out, ErrOut: &errOut}
	root := newTestRoot(app)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeRendersAndArchivesReport(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)

	out, err := execute(t, "analyze", "--repo", "acme/shop", "--pr", "#42", "-o", "json")
	require.NoError(t, err)

	last := srv.lastRequest()
	assert.Equal(t, "acme/shop", last.Repo)
	assert.Equal(t, "42", last.PR)
	assert.Equal(t, "ghp_test", last.Token)
	assert.Equal(t, "openrouter", last.Provider)
	assert.Equal(t, "anthropic/claude-sonnet-4", last.Model)
	assert.Equal(t, "sk-or-test", last.APIKey)
	assert.Equal(t, model.FilterAll, last.FilterMode)

	var view struct {
		Identity string `json:"identity"`
		Progress struct {
			Total int `json:"total"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, strings.HasPrefix(view.Identity, "qai_scenarios_"))
	assert.Equal(t, 2, view.Progress.Total)

	out, err = execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Verify coupon applies")
	assert.Contains(t, out, "src/cart.py (unknown symbols)")
}

func TestAnalyzeFlagsOverrideEnvironment(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	_, err := execute(t, "analyze", "--repo", "acme/shop", "--pr", "7", "--provider", "openai",
		"--model", "gpt-4o", "--filter-mode", "relevant", "--brd", "Coupons expire after 30 days", "-o", "yaml")
	require.NoError(t, err)
	last := srv.lastRequest()
	assert.Equal(t, "openai", last.Provider)
	assert.Equal(t, "gpt-4o", last.Model)
	assert.Equal(t, "sk-openai", last.APIKey)
	assert.Equal(t, model.FilterRelevant, last.FilterMode)
	assert.Equal(t, "Coupons expire after 30 days", last.BRDText)
}

func TestAnalyzeValidationHappensBeforeRequest(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)

	_, err := execute(t, "analyze", "--repo", "not-a-repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo must look like owner/repository")
	assert.Contains(t, err.Error(), "pr must be a positive pull request number")
	assert.Zero(t, srv.hits.Load())
}

func TestAnalyzeFailureKeepsArchivedReport(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)

	_, err := execute(t, "analyze", "--repo", "acme/shop", "--pr", "1", "-o", "json")
	require.NoError(t, err)
	_, err = execute(t, "toggle", "TC002")
	require.NoError(t, err)

	srv.setStatus(http.StatusBadGateway)
	_, err = execute(t, "analyze", "--repo", "acme/shop", "--pr", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error! status: 502")

	out, err := execute(t, "progress")
	require.NoError(t, err)
	assert.Equal(t, "50% 1/2\n", out)
}

func TestChecklistSurvivesReanalysis(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)

	_, err := execute(t, "analyze", "--repo", "acme/shop", "--pr", "1", "-o", "json")
	require.NoError(t, err)
	out, err := execute(t, "toggle", "TC001", "TC002")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ TC001 completed")
	assert.Contains(t, out, "100%  2 of 2 completed")

	_, err = execute(t, "analyze", "--repo", "acme/shop", "--pr", "1", "-o", "json")
	require.NoError(t, err)
	out, err = execute(t, "progress")
	require.NoError(t, err)
	assert.Equal(t, "100% 2/2\n", out)

	out, err = execute(t, "toggle", "TC001")
	require.NoError(t, err)
	assert.Contains(t, out, "○ TC001 reopened")
}

func TestToggleErrors(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)

	_, err := execute(t, "toggle", "TC001")
	require.ErrorIs(t, err, session.ErrNoReport)

	_, err = execute(t, "analyze", "--repo", "acme/shop", "--pr", "1", "-o", "json")
	require.NoError(t, err)
	_, err = execute(t, "toggle", "TC009")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown test case "TC009"`)

	out, err := execute(t, "progress")
	require.NoError(t, err)
	assert.Equal(t, "0% 0/2\n", out)
}

func TestShowWithoutReport(t *testing.T) {
	setupEnv(t, "http://localhost:8000")

	out, err := execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No analysis yet")

	_, err = execute(t, "show", "-o", "xml")
	require.Error(t, err)
}

func TestShowExpand(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)
	_, err := execute(t, "analyze", "--repo", "acme/shop", "--pr", "1", "-o", "json")
	require.NoError(t, err)

	out, err := execute(t, "show", "--expand", "TC002")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Apply OLD")
	assert.NotContains(t, out, "1. Apply SAVE10")
}

func TestQueryAttachesTextAndKeepsProgress(t *testing.T) {
	srv := newBackend(t)
	setupEnv(t, srv.URL)
	_, err := execute(t, "analyze", "--repo", "acme/shop", "--pr", "1", "-o", "json")
	require.NoError(t, err)
	_, err = execute(t, "toggle", "TC001")
	require.NoError(t, err)

	out, err := execute(t, "query", "what", "about", "mobile?")
	require.NoError(t, err)
	assert.Contains(t, out, "what about mobile?")
	assert.Contains(t, out, "1 of 2 completed")

	out, err = execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "what about mobile?")
}

func TestReviewRequiresTerminal(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	_, err := execute(t, "review")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestInvalidConfigFile(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	_, err := execute(t, "--config", "missing.yaml", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
