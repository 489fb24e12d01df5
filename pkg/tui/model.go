// Package tui is the interactive checklist: a bubbletea program over a
// session.Session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/helmcode/pr-impact/pkg/model"
	"github.com/helmcode/pr-impact/pkg/session"
)

// chrome is the number of lines taken by the header and the help footer.
const chrome = 6

type Options struct {
	// Submitter and Request enable (re)submission with "r".
	Submitter session.Submitter
	Request   *model.AnalysisRequest
	// SubmitOnStart begins a submission as soon as the program starts.
	SubmitOnStart bool
	// OnReport is called with every report a submission installs.
	OnReport func(*model.AnalysisReport)
}

type submitResultMsg struct {
	ticket session.Ticket
	report *model.AnalysisReport
	err    error
}

type Model struct {
	ctx     context.Context
	session *session.Session
	opts    Options

	cursor   int
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	cancel  context.CancelFunc
	pending tea.Cmd
}

func New(ctx context.Context, s *session.Session, opts Options) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = titleStyle
	m := Model{
		ctx:      ctx,
		session:  s,
		opts:     opts,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	if opts.SubmitOnStart {
		var cmd tea.Cmd
		m, cmd = m.startSubmit()
		m.pending = cmd
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.pending
}

func (m Model) canSubmit() bool {
	return m.opts.Submitter != nil && m.opts.Request != nil
}

func (m Model) startSubmit() (Model, tea.Cmd) {
	if !m.canSubmit() {
		return m, nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	ticket := m.session.BeginSubmit()
	sub, req := m.opts.Submitter, *m.opts.Request
	run := func() tea.Msg {
		report, err := sub.Submit(ctx, req)
		return submitResultMsg{ticket: ticket, report: report, err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		m.ready = true

	case spinner.TickMsg:
		if m.session.Phase() != session.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitResultMsg:
		if m.session.CompleteSubmit(msg.ticket, msg.report, msg.err) {
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			if msg.err == nil && msg.report != nil && m.opts.OnReport != nil {
				m.opts.OnReport(m.session.Report())
			}
		}

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg.String())
		if cmd != nil {
			m.refresh()
			return m, cmd
		}
	}

	m.refresh()
	return m, nil
}

func (m Model) handleKey(key string) (Model, tea.Cmd) {
	ids := m.session.Report().ScenarioIDs()
	switch key {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, tea.Quit
	case "esc":
		if m.session.Phase() == session.PhaseLoading {
			m.session.Abandon()
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
		} else {
			m.session.DismissError()
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(ids)-1 {
			m.cursor++
		}
	case " ", "x":
		if m.cursor < len(ids) {
			m.session.ToggleCompletion(ids[m.cursor])
		}
	case "enter", "tab":
		if m.cursor < len(ids) {
			m.session.ToggleExpansion(ids[m.cursor])
		}
	case "r":
		if m.session.Phase() != session.PhaseLoading {
			return m.startSubmit()
		}
	}
	return m, nil
}

// refresh re-renders the scenario list into the viewport and scrolls so the
// selected row stays visible.
func (m *Model) refresh() {
	if n := len(m.session.Report().ScenarioIDs()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	body, selectedLine := m.renderBody()
	m.viewport.SetContent(body)
	if !m.ready {
		return
	}
	if selectedLine < m.viewport.YOffset {
		m.viewport.SetYOffset(selectedLine)
	} else if bottom := m.viewport.YOffset + m.viewport.Height - 1; selectedLine > bottom {
		m.viewport.SetYOffset(selectedLine - m.viewport.Height + 1)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		body, _ := m.renderBody()
		b.WriteString(body)
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	report := m.session.Report()
	b.WriteString(titleStyle.Render("📋 Test Cases Checklist"))
	if report != nil {
		risk := report.OverallRisk
		b.WriteString("   Overall Risk: ")
		b.WriteString(riskStyle(risk).Render(strings.ToUpper(string(risk))))
	}
	b.WriteString("\n")
	b.WriteString(progressBar(m.session, 24))
	b.WriteString("\n")

	switch {
	case m.session.Phase() == session.PhaseLoading:
		b.WriteString(m.spinner.View() + " Analyzing pull request... (esc to stop waiting)")
	case m.session.Err() != nil:
		b.WriteString(errorStyle.Render("✗ " + m.session.Err().Error()))
	case report != nil && report.ChatQuery != "":
		b.WriteString(mutedStyle.Render("💬 " + report.ChatQuery))
	}
	return b.String()
}

func progressBar(s *session.Session, width int) string {
	p := s.Progress()
	filled := width * p.Percent / 100
	return fmt.Sprintf("%s%s %d%%  %d of %d completed",
		barFullStyle.Render(strings.Repeat("█", filled)),
		barEmptyStyle.Render(strings.Repeat("░", width-filled)),
		p.Percent, p.Completed, p.Total)
}

// renderBody returns the scenario list and the line index of the selected row.
func (m Model) renderBody() (string, int) {
	report := m.session.Report()
	if report == nil {
		if m.session.Phase() == session.PhaseLoading {
			return "", 0
		}
		return mutedStyle.Render("No analysis yet. Enter PR details to see results."), 0
	}
	if len(report.QAScenarios) == 0 {
		return mutedStyle.Render("This report has no QA scenarios."), 0
	}

	wrap := lipgloss.NewStyle()
	if m.width > 8 {
		wrap = wrap.Width(m.width - 8)
	}

	var lines []string
	selectedLine := 0
	for i, sc := range report.QAScenarios {
		if i == m.cursor {
			selectedLine = len(lines)
		}
		lines = append(lines, m.renderRow(i, sc))
		if sc.Objective != "" {
			lines = append(lines, indent(mutedStyle.Render(wrap.Render(sc.Objective)), "      "))
		}
		if m.session.IsExpanded(sc.ID) {
			if len(sc.Steps) > 0 {
				lines = append(lines, "      Test Steps:")
				for n, step := range sc.Steps {
					lines = append(lines, fmt.Sprintf("        %d. %s", n+1, step))
				}
			}
			if sc.Expected != "" {
				lines = append(lines, "      Expected Result:")
				lines = append(lines, indent(expectedStyle.Render(wrap.Render(sc.Expected)), "        "))
			}
		}
	}
	return strings.Join(lines, "\n"), selectedLine
}

func (m Model) renderRow(i int, sc model.QAScenario) string {
	pointer := "  "
	if i == m.cursor {
		pointer = selectedStyle.Render("> ")
	}
	box := "[ ]"
	title := sc.Title
	if limit := m.width - len(sc.ID) - 24; m.width > 0 && limit > 8 {
		title = runewidth.Truncate(title, limit, "…")
	}
	if m.session.IsCompleted(sc.ID) {
		box = "[x]"
		title = doneStyle.Render(title)
	} else if i == m.cursor {
		title = selectedStyle.Render(title)
	}
	row := fmt.Sprintf("%s%s %s  %s  %s", pointer, box, mutedStyle.Render(sc.ID), title,
		riskStyle(sc.Risk).Render(strings.ToUpper(string(sc.Risk))))
	if len(sc.Tags) > 0 {
		row += "  " + mutedStyle.Render("#"+strings.Join(sc.Tags, " #"))
	}
	return row
}

func (m Model) helpLine() string {
	help := "↑/↓ move • space toggle • enter details • q quit"
	if m.canSubmit() {
		help = "↑/↓ move • space toggle • enter details • r re-run • esc cancel • q quit"
	}
	return help
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// Run starts the interactive checklist and blocks until the user quits.
func Run(ctx context.Context, s *session.Session, opts Options) error {
	program := tea.NewProgram(New(ctx, s, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
