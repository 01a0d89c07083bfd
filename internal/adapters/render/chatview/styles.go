package chatview

import "github.com/charmbracelet/lipgloss"

type styles struct {
	assistant  lipgloss.Style
	system     lipgloss.Style
	errText    lipgloss.Style
	path       lipgloss.Style
	header     lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	dirEntry   lipgloss.Style
	fileEntry  lipgloss.Style
	diffAdd    lipgloss.Style
	diffDel    lipgloss.Style
	diffCtx    lipgloss.Style
	prompt     lipgloss.Style
	promptMeta lipgloss.Style
	applied    lipgloss.Style
	discarded  lipgloss.Style
}

func newStyles() styles {
	return styles{
		assistant:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		system:     lipgloss.NewStyle().Faint(true),
		errText:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		path:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		dirEntry:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		fileEntry:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		diffAdd:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		diffDel:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		diffCtx:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		prompt:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		promptMeta: lipgloss.NewStyle().Faint(true),
		applied:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		discarded:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
