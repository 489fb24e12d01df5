// Package session holds the state behind a displayed analysis report: which
// report is shown, its checklist and expansion state, its progress, and the
// in-flight submission if any.
//
// A Session is not safe for concurrent use. It is owned by whichever loop
// drives the UI; long-running submissions report back to that loop with the
// Ticket they were started with.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/helmcode/pr-impact/pkg/checklist"
	"github.com/helmcode/pr-impact/pkg/model"
)

type Phase int

const (
	PhaseNoReport Phase = iota
	PhaseLoading
	PhaseReportLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseNoReport:
		return "no-report"
	case PhaseLoading:
		return "loading"
	case PhaseReportLoaded:
		return "report-loaded"
	default:
		return "unknown"
	}
}

// Submitter sends an analysis request and returns the resulting report.
type Submitter interface {
	Submit(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error)
}

// Ticket identifies one submission. Only the most recent ticket may install
// its result.
type Ticket struct {
	generation uint64
}

type Session struct {
	store  checklist.Store
	logger *zap.Logger

	report   *model.AnalysisReport
	key      checklist.Key
	hasKey   bool
	checked  checklist.State
	expanded map[string]bool
	progress checklist.Progress

	loading    bool
	generation uint64
	err        error
}

func New(store checklist.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:    store,
		logger:   logger.Named("session"),
		checked:  checklist.State{},
		expanded: map[string]bool{},
	}
}

func (s *Session) Phase() Phase {
	switch {
	case s.loading:
		return PhaseLoading
	case s.report != nil:
		return PhaseReportLoaded
	default:
		return PhaseNoReport
	}
}

// Report returns the displayed report. It stays set while a new submission
// is loading.
func (s *Session) Report() *model.AnalysisReport { return s.report }

// Key returns the checklist key of the displayed report, if it has one.
func (s *Session) Key() (checklist.Key, bool) { return s.key, s.hasKey }

func (s *Session) Progress() checklist.Progress { return s.progress }

func (s *Session) IsCompleted(id string) bool { return s.checked.Completed(id) }

func (s *Session) IsExpanded(id string) bool { return s.expanded[id] }

// Checklist returns a copy of the checklist state.
func (s *Session) Checklist() checklist.State { return s.checked.Clone() }

// Err returns the error of the last failed submission, until dismissed or
// superseded by a successful one.
func (s *Session) Err() error { return s.err }

func (s *Session) DismissError() { s.err = nil }

// BeginSubmit enters the loading phase and returns the ticket the result must
// be delivered with.
func (s *Session) BeginSubmit() Ticket {
	s.generation++
	s.loading = true
	s.err = nil
	s.logger.Debug("Submission started", zap.Uint64("generation", s.generation))
	return Ticket{generation: s.generation}
}

// Abandon leaves the loading phase without waiting for the in-flight
// submission. Its result will be ignored when it arrives.
func (s *Session) Abandon() {
	if !s.loading {
		return
	}
	s.generation++
	s.loading = false
	s.logger.Debug("Submission abandoned")
}

// CompleteSubmit delivers a submission result. It returns false and changes
// nothing when the ticket is stale. A failure keeps the previous report.
func (s *Session) CompleteSubmit(t Ticket, report *model.AnalysisReport, err error) bool {
	if t.generation != s.generation || !s.loading {
		s.logger.Debug("Ignoring stale submission result",
			zap.Uint64("ticket", t.generation), zap.Uint64("current", s.generation))
		return false
	}
	s.loading = false
	if err != nil {
		s.err = err
		s.logger.Warn("Submission failed", zap.Error(err))
		return true
	}
	if report == nil {
		return true
	}
	s.Install(report)
	return true
}

// Submit runs a full submission synchronously.
func (s *Session) Submit(ctx context.Context, sub Submitter, req model.AnalysisRequest) error {
	t := s.BeginSubmit()
	report, err := sub.Submit(ctx, req)
	s.CompleteSubmit(t, report, err)
	return err
}

// Install displays report. Checklist and expansion state are reset only when
// the report's key differs from the one currently shown.
func (s *Session) Install(report *model.AnalysisReport) {
	s.report = report
	key, ok := checklist.DeriveIdentity(report)

	if ok == s.hasKey && key == s.key {
		s.recompute()
		return
	}

	s.key, s.hasKey = key, ok
	s.expanded = map[string]bool{}
	s.checked = nil
	if ok {
		s.checked = s.store.Load(key)
	}
	if s.checked == nil {
		s.checked = checklist.State{}
	}
	s.logger.Debug("Installed report", zap.String("key", string(key)), zap.Bool("checklist", ok),
		zap.Int("restored", len(s.checked)))
	s.recompute()
}

// ToggleCompletion flips id's completed flag and persists the checklist.
// Without a checklist key it does nothing and returns false.
func (s *Session) ToggleCompletion(id string) bool {
	if !s.hasKey {
		return false
	}
	done := s.checked.Toggle(id)
	s.store.Save(s.key, s.checked)
	s.recompute()
	return done
}

// ToggleExpansion flips whether id's details are shown. Never persisted.
func (s *Session) ToggleExpansion(id string) bool {
	s.expanded[id] = !s.expanded[id]
	return s.expanded[id]
}

// AttachQuery records a refinement query on the displayed report.
func (s *Session) AttachQuery(text string) {
	if s.report == nil {
		return
	}
	r := s.report.Clone()
	r.ChatQuery = text
	s.report = r
}

func (s *Session) recompute() {
	var scenarios []model.QAScenario
	if s.report != nil {
		scenarios = s.report.QAScenarios
	}
	s.progress = checklist.ComputeProgress(scenarios, s.checked)
}
