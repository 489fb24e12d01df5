package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/helmcode/pr-impact/pkg/model"
)

var ErrEmptyReport = errors.New("empty report")

// ParseReport decodes a report sent by the analysis service and normalizes it.
// The service occasionally wraps its JSON in markdown fences; those are removed.
func ParseReport(raw []byte) (*model.AnalysisReport, error) {
	cleaned := stripFences(string(raw))
	if cleaned == "" || cleaned == "null" {
		return nil, ErrEmptyReport
	}

	// overall_risk is accepted as an alias of overallRisk.
	var wire struct {
		model.AnalysisReport
		OverallRiskSnake model.Level `json:"overall_risk"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	report := wire.AnalysisReport
	if report.OverallRisk == "" {
		report.OverallRisk = wire.OverallRiskSnake
	}
	report.Normalize()
	return &report, nil
}

// stripFences removes a markdown fence such as ```json ... ``` wrapping the
// whole body. Backticks inside the JSON are left alone.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		_, body, found := strings.Cut(rest, "\n")
		if !found {
			body = strings.TrimLeft(rest, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		text = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	return strings.TrimSpace(text)
}
