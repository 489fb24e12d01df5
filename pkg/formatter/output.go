package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/helmcode/pr-impact/pkg/checklist"
	"github.com/helmcode/pr-impact/pkg/model"
	"github.com/helmcode/pr-impact/pkg/session"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// View is what gets rendered: a report plus its checklist state.
type View struct {
	Report    *model.AnalysisReport `json:"report" yaml:"report"`
	Identity  string                `json:"identity,omitempty" yaml:"identity,omitempty"`
	Progress  checklist.Progress    `json:"progress" yaml:"progress"`
	Completed []string              `json:"completed" yaml:"completed"`

	expanded map[string]bool
}

// NewView snapshots a session. Only scenarios of the current report are
// listed as completed.
func NewView(s *session.Session) View {
	v := View{
		Report:    s.Report(),
		Progress:  s.Progress(),
		Completed: []string{},
		expanded:  map[string]bool{},
	}
	if key, ok := s.Key(); ok {
		v.Identity = string(key)
	}
	for _, id := range v.Report.ScenarioIDs() {
		if s.IsCompleted(id) {
			v.Completed = append(v.Completed, id)
		}
		if s.IsExpanded(id) {
			v.expanded[id] = true
		}
	}
	return v
}

func (v View) isCompleted(id string) bool {
	for _, c := range v.Completed {
		if c == id {
			return true
		}
	}
	return false
}

// ValidFormat reports whether format is one Display understands.
func ValidFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Display formats and writes the view
func Display(w io.Writer, v View, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, v)
	case FormatYAML:
		return displayYAML(w, v)
	case FormatHuman, "":
		displayHuman(w, v)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", format)
	}
}

func displayJSON(w io.Writer, v View) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, v View) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}
