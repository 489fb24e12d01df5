package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the Low/Medium/High scale used for risk, severity, likelihood and priority.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// ParseLevel normalizes case. Unrecognized text is kept as-is so nothing the
// service sends is silently dropped.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LevelLow
	case "medium":
		return LevelMedium
	case "high":
		return LevelHigh
	default:
		return Level(strings.TrimSpace(s))
	}
}

func (l Level) Known() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	*l = ParseLevel(s)
	return nil
}

// UnknownSymbols is the sentinel the service uses when it could not resolve
// the symbols touched in a file.
const UnknownSymbols = "(unknown symbols)"

// Symbols is the list of symbol names impacted in one file. The service sends
// either a list or a single sentinel string.
type Symbols []string

func (s *Symbols) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("symbols: expected list or string: %w", err)
	}
	*s = Symbols{single}
	return nil
}

// Unknown reports whether the service could not name any symbol.
func (s Symbols) Unknown() bool {
	if len(s) == 0 {
		return true
	}
	for _, name := range s {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case strings.ToLower(UnknownSymbols), "unknown":
		default:
			return false
		}
	}
	return true
}

type AnalysisReport struct {
	Summary             string             `json:"summary" yaml:"summary"`
	FeaturesImpacted    []string           `json:"features_impacted" yaml:"features_impacted"`
	ModulesImpacted     []string           `json:"modules_impacted" yaml:"modules_impacted"`
	CodeSymbolsImpacted map[string]Symbols `json:"code_symbols_impacted" yaml:"code_symbols_impacted"`
	RiskHotspots        []RiskHotspot      `json:"risk_hotspots" yaml:"risk_hotspots"`
	QAScenarios         []QAScenario       `json:"qa_scenarios" yaml:"qa_scenarios"`
	OverallRisk         Level              `json:"overallRisk" yaml:"overall_risk"`
	ChatQuery           string             `json:"chatQuery,omitempty" yaml:"chat_query,omitempty"`
}

type RiskHotspot struct {
	File       string `json:"file" yaml:"file"`
	Reason     string `json:"reason" yaml:"reason"`
	Severity   Level  `json:"severity" yaml:"severity"`
	Likelihood Level  `json:"likelihood" yaml:"likelihood"`
}

type QAScenario struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Objective string   `json:"objective" yaml:"objective"`
	Steps     []string `json:"steps" yaml:"steps"`
	Expected  string   `json:"expected" yaml:"expected"`
	Priority  Level    `json:"priority,omitempty" yaml:"priority,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Risk      Level    `json:"risk" yaml:"risk"`
}

// ScenarioID is the id synthesized for the scenario at a zero-based index
// when the service did not send one.
func ScenarioID(index int) string {
	return fmt.Sprintf("TC%03d", index+1)
}

// RiskFromPriority maps a priority onto a risk level: High and Medium carry
// over, anything else is Low.
func RiskFromPriority(p Level) Level {
	switch p {
	case LevelHigh:
		return LevelHigh
	case LevelMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Normalize fills in the fields the UI derives: scenario ids, scenario risk
// and the overall risk default. Nil collections are left nil; ranging over
// them is safe and QAScenarios == nil still means "field absent".
func (r *AnalysisReport) Normalize() {
	if r.OverallRisk == "" {
		r.OverallRisk = LevelMedium
	}
	for i := range r.QAScenarios {
		sc := &r.QAScenarios[i]
		if strings.TrimSpace(sc.ID) == "" {
			sc.ID = ScenarioID(i)
		}
		if sc.Risk == "" {
			sc.Risk = RiskFromPriority(sc.Priority)
		}
	}
}

// ScenarioIDs returns the ids of all scenarios in report order.
func (r *AnalysisReport) ScenarioIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.QAScenarios))
	for _, sc := range r.QAScenarios {
		ids = append(ids, sc.ID)
	}
	return ids
}

// Clone returns a copy that shares no slices or maps with r.
func (r *AnalysisReport) Clone() *AnalysisReport {
	if r == nil {
		return nil
	}
	out := *r
	out.FeaturesImpacted = cloneStrings(r.FeaturesImpacted)
	out.ModulesImpacted = cloneStrings(r.ModulesImpacted)
	if r.CodeSymbolsImpacted != nil {
		out.CodeSymbolsImpacted = make(map[string]Symbols, len(r.CodeSymbolsImpacted))
		for file, syms := range r.CodeSymbolsImpacted {
			out.CodeSymbolsImpacted[file] = Symbols(cloneStrings(syms))
		}
	}
	if r.RiskHotspots != nil {
		out.RiskHotspots = append([]RiskHotspot(nil), r.RiskHotspots...)
	}
	if r.QAScenarios != nil {
		out.QAScenarios = make([]QAScenario, len(r.QAScenarios))
		for i, sc := range r.QAScenarios {
			sc.Steps = cloneStrings(sc.Steps)
			sc.Tags = cloneStrings(sc.Tags)
			out.QAScenarios[i] = sc
		}
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
