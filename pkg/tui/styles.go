package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/helmcode/pr-impact/pkg/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	expectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingTop(1)
)

func riskStyle(l model.Level) lipgloss.Style {
	switch l {
	case model.LevelHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	case model.LevelMedium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case model.LevelLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	default:
		return mutedStyle
	}
}
