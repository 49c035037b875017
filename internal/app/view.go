package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/icons"
	"github.com/llehouerou/reel/internal/keymap"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		styles.Title.Render("reel"),
		styles.Panel.Render(m.renderSources()),
		m.renderStatus(),
	}
	if m.Buffering {
		sections = append(sections, m.Spinner.View()+styles.Muted.Render(" Buffering…"))
	}
	if m.LastEvent != "" {
		sections = append(sections, styles.Muted.Render("Last event: "+m.LastEvent))
	}
	if m.ErrorMsg != "" {
		sections = append(sections, styles.Error.Render(m.ErrorMsg))
	}
	sections = append(sections, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSources() string {
	cat := m.catalog()
	current := m.Ctrl.State().Source
	live := m.Ctrl.Live()

	lines := make([]string, 0, cat.Len()+1)
	for i, id := range cat.IDs() {
		marker := "  "
		if id == current {
			marker = "○ "
			if live {
				marker = "● "
			}
		}
		line := marker + sourceLabel(cat, id)
		if e, ok := cat.Entry(id); ok && e.Subtitle != "" {
			line += styles.Muted.Render(" · " + e.Subtitle)
		}
		switch {
		case i == m.Cursor:
			line = styles.Cursor.Render(line)
		case id == current && live:
			line = styles.Playing.Render(line)
		default:
			line = styles.Base.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func sourceLabel(cat *catalog.Catalog, id catalog.SourceID) string {
	if e, ok := cat.Entry(id); ok {
		return icons.FormatSource(e.Label(), e.Locator)
	}
	return icons.FormatPlaylist(cat.Label(id))
}

func (m Model) renderStatus() string {
	state := m.Ctrl.State()
	cat := m.catalog()

	verb := "Paused"
	if m.Ctrl.Live() {
		verb = "Playing"
		if !state.AutoPlay {
			verb = "Ready"
		}
	}

	parts := []string{verb + " " + cat.Label(state.Source)}
	if locators, err := cat.Resolve(state.Source); err == nil && len(locators) > 1 {
		parts = append(parts, fmt.Sprintf("window %d/%d", state.Window+1, len(locators)))
	}
	parts = append(parts, formatDuration(m.Position))
	if m.Tags != nil {
		parts = append(parts, m.Tags.String())
	}
	parts = append(parts, "auto-play "+onOff(state.AutoPlay))

	return styles.Base.Render(strings.Join(parts, "  ·  "))
}

func (m Model) renderHelp() string {
	if !m.ShowHelp {
		return styles.Muted.Render("? help  q quit")
	}
	lines := make([]string, 0, len(keymap.All))
	for _, b := range keymap.All {
		lines = append(lines, fmt.Sprintf("%-14s %s", strings.Join(b.Keys, "/"), b.Description))
	}
	return styles.Muted.Render(strings.Join(lines, "\n"))
}

// formatDuration renders d as m:ss, or h:mm:ss past an hour.
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	mnt := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
	}
	return fmt.Sprintf("%d:%02d", mnt, s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
