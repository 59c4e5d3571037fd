package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// MarkReadMsg asks the parent to mark the shown notification as read.
type MarkReadMsg struct {
	ID string
}

// Model is the notification detail view component.
type Model struct {
	notification *model.Notification
	viewport     viewport.Model
	keys         *keys.KeyMap
	width        int
	height       int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.MarkRead):
			if m.notification != nil && !m.notification.Read {
				id := m.notification.ID
				return m, func() tea.Msg {
					return MarkReadMsg{ID: id}
				}
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.notification == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No notification selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.notification == nil {
		return ""
	}

	n := m.notification
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(theme.TypeIcon(n.Type)+"  "+n.Title))

	sevBadge := theme.SeverityStyle(n.Severity).Render(
		theme.SeverityIcon(n.Severity) + " " + string(n.Severity),
	)
	typeBadge := theme.TypeBadgeStyle(n.Type).Render(n.Type)
	badgeLine := lipgloss.JoinHorizontal(lipgloss.Top, sevBadge, "  ", typeBadge)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	status := "unread"
	if n.Read {
		status = "read"
	}
	sections = append(sections,
		fmt.Sprintf("%s  %s", metaStyle.Render("Received:"), valStyle.Render(ui.FormatTimestamp(n.Timestamp))),
		fmt.Sprintf("%s    %s", metaStyle.Render("Status:"), valStyle.Render(status)),
		fmt.Sprintf("%s        %s", metaStyle.Render("ID:"), valStyle.Render(n.ID)),
	)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	body := n.Message
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No message")
	} else {
		body = lipgloss.NewStyle().Width(max(m.width-4, 20)).Render(body)
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNotification updates the notification being displayed. The scroll
// position is kept when the same notification is shown again.
func (m *Model) SetNotification(n model.Notification) {
	same := m.notification != nil && m.notification.ID == n.ID
	m.notification = &n
	m.viewport.SetContent(m.renderContent())
	if !same {
		m.viewport.GotoTop()
	}
}

// NotificationID returns the ID of the shown notification, or "".
func (m Model) NotificationID() string {
	if m.notification == nil {
		return ""
	}
	return m.notification.ID
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.notification != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
