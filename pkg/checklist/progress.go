package checklist

import (
	"math"

	"github.com/helmcode/pr-impact/pkg/model"
)

type Progress struct {
	Percent   int `json:"percent" yaml:"percent"`
	Completed int `json:"completed" yaml:"completed"`
	Total     int `json:"total" yaml:"total"`
}

// ComputeProgress counts the scenarios of the current report that are marked
// completed. Entries in state for ids the report no longer contains are
// ignored, so Completed never exceeds Total.
func ComputeProgress(scenarios []model.QAScenario, state State) Progress {
	p := Progress{Total: len(scenarios)}
	if p.Total == 0 {
		return p
	}

	seen := make(map[string]struct{}, len(scenarios))
	for _, sc := range scenarios {
		if _, dup := seen[sc.ID]; dup {
			continue
		}
		seen[sc.ID] = struct{}{}
		if state[sc.ID] {
			p.Completed++
		}
	}
	p.Percent = int(math.Floor(float64(p.Completed)/float64(p.Total)*100 + 0.5))
	return p
}
