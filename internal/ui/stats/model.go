// Package stats renders the server-side counters panel.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui"
)

// Model is the stats panel view.
type Model struct {
	stats    model.Stats
	hasStats bool
	width    int
	height   int
}

// New creates a new stats panel.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetStats updates the displayed counters.
func (m *Model) SetStats(s model.Stats, ok bool) {
	m.stats = s
	m.hasStats = ok
}

// Visible reports whether there is anything to show. The panel stays
// hidden until the server reports at least one notification.
func (m Model) Visible() bool {
	return m.hasStats && m.stats.Total > 0
}

// View renders the panel.
func (m Model) View() string {
	if !m.Visible() {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No statistics yet.")
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(22)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valStyle.Render(value)
	}

	lines := []string{
		titleStyle.Render("Statistics"),
		"",
		row("Total", humanize.Comma(int64(m.stats.Total))),
		row("Unread", humanize.Comma(int64(m.stats.Unread))),
	}
	if !m.stats.LastUpdate.IsZero() {
		lines = append(lines, row("Last notification", ui.FormatTimestamp(m.stats.LastUpdate)))
	}

	if len(m.stats.ByType) > 0 {
		lines = append(lines, "", titleStyle.Render("By type"))
		for _, k := range sortedKeys(m.stats.ByType) {
			lines = append(lines, row(theme.TypeIcon(k)+" "+k, humanize.Comma(int64(m.stats.ByType[k]))))
		}
	}

	if len(m.stats.BySeverity) > 0 {
		lines = append(lines, "", titleStyle.Render("By severity"))
		for _, k := range sortedKeys(m.stats.BySeverity) {
			sev := model.Severity(k)
			label := theme.SeverityIcon(sev) + " " + k
			lines = append(lines, row(label, theme.SeverityStyle(sev).Render(humanize.Comma(int64(m.stats.BySeverity[k])))))
		}
	}

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 20)).
		Render(strings.Join(lines, "\n"))
}

// Summary renders a one-line counter summary for the status bar.
func (m Model) Summary() string {
	if !m.Visible() {
		return ""
	}
	return fmt.Sprintf("%s total · %s unread",
		humanize.Comma(int64(m.stats.Total)), humanize.Comma(int64(m.stats.Unread)))
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
