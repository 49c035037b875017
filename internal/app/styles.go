package app

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#a78bfa")
	colorFgBase  = lipgloss.Color("#c0c0c0")
	colorFgMuted = lipgloss.Color("#808080")
	colorCursor  = lipgloss.Color("#303030")
	colorSuccess = lipgloss.Color("#4ade80")
	colorError   = lipgloss.Color("#f87171")
)

var styles = struct {
	Title   lipgloss.Style
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Cursor  lipgloss.Style
	Playing lipgloss.Style
	Error   lipgloss.Style
	Panel   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	Base:    lipgloss.NewStyle().Foreground(colorFgBase),
	Muted:   lipgloss.NewStyle().Foreground(colorFgMuted),
	Accent:  lipgloss.NewStyle().Foreground(colorPrimary),
	Cursor:  lipgloss.NewStyle().Background(colorCursor).Foreground(colorFgBase),
	Playing: lipgloss.NewStyle().Foreground(colorSuccess),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFgMuted).
		Padding(0, 1),
}
