package filterform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// AppliedMsg is dispatched when the user submits the form.
type AppliedMsg struct {
	Filter model.FilterState
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	typ        string
	severity   string
	unreadOnly bool
}

// Model is the Bubble Tea model for the filter form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	types      []string
	severities []model.Severity
	width      int
	height     int
}

// New creates a new filter form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{typ: model.FilterAll, severity: model.FilterAll},
		width:  width,
		height: height,
	}
}

// Start initializes the form with the current filter and the options
// present in the collection.
func (m *Model) Start(current model.FilterState, types []string, severities []model.Severity) tea.Cmd {
	m.types = types
	m.severities = severities

	m.fb.typ = current.Type
	if !current.TypeActive() {
		m.fb.typ = model.FilterAll
	}
	m.fb.severity = string(current.Severity)
	if !current.SeverityActive() {
		m.fb.severity = model.FilterAll
	}
	m.fb.unreadOnly = current.UnreadOnly

	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the filter form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		state := m.result()
		m.form = nil
		return m, func() tea.Msg { return AppliedMsg{Filter: state} }
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the filter form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Filter Notifications") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(typeOptions(m.types)...).
				Value(&m.fb.typ),
			huh.NewSelect[string]().
				Title("Severity").
				Options(severityOptions(m.severities)...).
				Value(&m.fb.severity),
			huh.NewConfirm().
				Title("Unread only").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.unreadOnly),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) result() model.FilterState {
	return model.FilterState{
		Type:       m.fb.typ,
		Severity:   model.Severity(m.fb.severity),
		UnreadOnly: m.fb.unreadOnly,
	}
}

// typeOptions lists "all" followed by the given types.
func typeOptions(types []string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All types", model.FilterAll)}
	for _, t := range types {
		opts = append(opts, huh.NewOption(theme.TypeIcon(t)+" "+t, t))
	}
	return opts
}

// severityOptions lists "all" followed by the given severities.
func severityOptions(sevs []model.Severity) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All severities", model.FilterAll)}
	for _, s := range sevs {
		opts = append(opts, huh.NewOption(theme.SeverityIcon(s)+" "+string(s), string(s)))
	}
	return opts
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
