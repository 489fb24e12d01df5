package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helmcode/pr-impact/pkg/model"
	"github.com/helmcode/pr-impact/pkg/parser"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 5 * time.Minute

	maxErrorBody = 512
)

// TransportError is a network failure or a non-2xx answer from the service.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis service unreachable: %v", e.Err)
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Analyzer submits analysis requests to the impact analysis service.
type Analyzer struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type Option func(*Analyzer)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Analyzer) { a.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.client.Timeout = d }
}

func New(baseURL string, opts ...Option) *Analyzer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	a := &Analyzer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("analyzer")
	return a
}

func (a *Analyzer) BaseURL() string { return a.baseURL }

// Submit posts req to {baseURL}/analyze and parses the returned report.
func (a *Analyzer) Submit(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	logger := a.logger.With(zap.String("request_id", requestID), zap.String("repo", req.Repo), zap.String("pr", req.PR))
	logger.Debug("Submitting analysis request", zap.String("url", httpReq.URL.String()),
		zap.String("provider", req.Provider), zap.String("model", req.Model))

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		logger.Warn("Analysis request failed", zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(respBytes)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		logger.Warn("Analysis service returned an error", zap.Int("status", resp.StatusCode), zap.String("body", body))
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: body}
	}

	report, err := parser.ParseReport(respBytes)
	if err != nil {
		return nil, fmt.Errorf("parse analysis report: %w", err)
	}
	logger.Info("Analysis complete", zap.Duration("elapsed", time.Since(start)),
		zap.Int("scenarios", len(report.QAScenarios)))
	return report, nil
}
