package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/helmcode/pr-impact/pkg/model"
	"github.com/helmcode/pr-impact/pkg/parser"
	"github.com/helmcode/pr-impact/pkg/storage"
)

// LastReportKey is the storage key of the most recently received report.
const LastReportKey = "last_report"

var ErrNoReport = errors.New("no analysis yet: run 'pr-impact analyze' first")

func SaveLast(kv storage.KV, report *model.AnalysisReport) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := kv.Set(LastReportKey, append(b, '\n')); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func LoadLast(kv storage.KV) (*model.AnalysisReport, error) {
	b, ok, err := kv.Get(LastReportKey)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if !ok {
		return nil, ErrNoReport
	}
	report, err := parser.ParseReport(b)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return report, nil
}
