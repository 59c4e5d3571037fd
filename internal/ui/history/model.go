// Package history shows the local sync journal.
package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
	"github.com/nhle/notification-center/internal/theme"
)

// BackMsg signals the parent to leave the history view.
type BackMsg struct{}

// LoadedMsg carries journal entries read from the store.
type LoadedMsg struct {
	Records []model.SyncRecord
	Summary store.Summary
	Err     error
}

// Model is the sync history view.
type Model struct {
	records  []model.SyncRecord
	summary  store.Summary
	err      error
	loaded   bool
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new history view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		viewport: viewport.New(width, max(height-2, 1)),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.records = msg.Records
		m.summary = msg.Summary
		m.err = msg.Err
		m.loaded = true
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.History) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the history view.
func (m Model) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading sync history...")
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	dim := lipgloss.NewStyle().Foreground(theme.ColorGray)

	if m.err != nil {
		return theme.SeverityStyle(model.SeverityError).Render("Could not read history: " + m.err.Error())
	}

	lines := []string{
		titleStyle.Render("Sync History"),
		dim.Render(fmt.Sprintf("%s entries, %d failed, %d new notifications, avg %dms",
			humanize.Comma(int64(m.summary.Total)), m.summary.Failed, m.summary.NewItems, m.summary.AvgDurationMs)),
		"",
	}
	if len(m.records) == 0 {
		lines = append(lines, dim.Render("Nothing recorded yet."))
	}

	for _, r := range m.records {
		lines = append(lines, formatRecord(r))
	}
	return strings.Join(lines, "\n")
}

// formatRecord renders one journal entry as a single line.
func formatRecord(r model.SyncRecord) string {
	status := theme.SeverityStyle(model.SeveritySuccess).Render("ok  ")
	if r.Failed() {
		status = theme.SeverityStyle(model.SeverityError).Render("fail")
	}

	op := string(r.Kind)
	if r.Op != "" {
		op += "/" + r.Op
	}

	detail := ""
	switch {
	case r.Failed():
		detail = r.Error
	case r.Kind == model.SyncKindSnapshot:
		detail = fmt.Sprintf("%d items, %d new", r.Items, r.NewItems)
	}

	return fmt.Sprintf("%s  %s  %-24s %6dms  %s",
		r.StartedAt.Format("15:04:05"), status, op, r.Duration.Milliseconds(), detail)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
}
