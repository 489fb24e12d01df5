package checklist

import (
	"encoding/base64"
	"strings"

	"github.com/helmcode/pr-impact/pkg/model"
)

const (
	// KeyPrefix namespaces checklist entries in the store.
	KeyPrefix = "qai_scenarios_"

	keyLength      = 16
	titleSeparator = "|"
)

// Key scopes persisted checklist state to one report.
type Key string

// DeriveIdentity computes the checklist key of a report from its ordered
// scenario titles. It returns false when the report carries no scenario list,
// which disables the checklist for that report.
//
// The key is a truncated encoding, not a hash: reports with the same titles in
// the same order share a key.
func DeriveIdentity(report *model.AnalysisReport) (Key, bool) {
	if report == nil || report.QAScenarios == nil {
		return "", false
	}
	titles := make([]string, len(report.QAScenarios))
	for i, sc := range report.QAScenarios {
		titles[i] = sc.Title
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(titles, titleSeparator)))
	if len(encoded) > keyLength {
		encoded = encoded[:keyLength]
	}
	return Key(KeyPrefix + encoded), true
}
