package notiflist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// SelectedNotificationMsg is sent when the user opens a notification.
type SelectedNotificationMsg struct {
	ID string
}

// Model is the notification list view component.
type Model struct {
	list          list.Model
	keys          *keys.KeyMap
	filterActive  bool
	everLoaded    bool
	width, height int
}

// New creates a new notification list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("notification", "notifications")
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetNotifications replaces the visible items, keeping the cursor on the
// same notification when it is still present.
func (m *Model) SetNotifications(items []model.Notification, filterActive bool) tea.Cmd {
	selectedID := ""
	if n, ok := m.Selected(); ok {
		selectedID = n.ID
	}

	listItems := make([]list.Item, len(items))
	cursor := -1
	for i, n := range items {
		listItems[i] = Item{Notification: n}
		if n.ID == selectedID {
			cursor = i
		}
	}

	m.filterActive = filterActive
	m.everLoaded = true
	m.list.Title = fmt.Sprintf("Notifications (%d)", len(items))
	cmd := m.list.SetItems(listItems)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Select) {
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedNotificationMsg{ID: n.ID}
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list or an empty state.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.everLoaded:
		return style.Render("Loading notifications...")
	case m.filterActive:
		return style.Render("No notifications match the current filters.\nPress x to clear them.")
	default:
		return style.Render("No notifications yet.\n\nPress t to create a test notification.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
