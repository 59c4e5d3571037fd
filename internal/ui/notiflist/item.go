package notiflist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification title for the list.
func (i Item) Title() string { return i.Notification.Title }

// Description returns the message body.
func (i Item) Description() string { return i.Notification.Message }

// ItemDelegate implements list.ItemDelegate for rendering notifications.
type ItemDelegate struct {
	// now is swapped in tests; nil means time.Now.
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a notification as a headline and a message line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, d.render(it.Notification, index == m.Index(), m.Width()))
}

func (d ItemDelegate) render(n model.Notification, selected bool, width int) string {
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}

	marker := " "
	titleStyle := theme.ReadTitleStyle
	if !n.Read {
		marker = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
		titleStyle = theme.UnreadTitleStyle
	}

	sev := theme.SeverityStyle(n.Severity).Render(theme.SeverityIcon(n.Severity))
	badge := theme.TypeBadgeStyle(n.Type).Render(n.Type)
	when := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(ui.RelativeTime(n.Timestamp, now))

	head := fmt.Sprintf("%s %s %s %s %s  %s",
		marker, theme.TypeIcon(n.Type), sev, titleStyle.Render(n.Title), badge, when)

	msgWidth := max(width-6, 10)
	body := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		PaddingLeft(4).
		MaxWidth(msgWidth).
		Render(n.Message)

	line := lipgloss.JoinVertical(lipgloss.Left, head, body)
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
