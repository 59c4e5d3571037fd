package detail

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
)

func TestMarkReadOnlyForUnread(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetNotification(model.Notification{ID: "n1", Title: "Hello", Message: "World"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	require.NotNil(t, cmd)
	assert.Equal(t, MarkReadMsg{ID: "n1"}, cmd())

	m.SetNotification(model.Notification{ID: "n1", Title: "Hello", Message: "World", Read: true})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	assert.Nil(t, cmd)
}

func TestEscGoesBack(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestViewRendersMessage(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	assert.Contains(t, m.View(), "No notification selected")

	m.SetNotification(model.Notification{
		ID:       "n1",
		Type:     model.TypeLowStock,
		Severity: model.SeverityWarning,
		Title:    "Low stock",
		Message:  "Widget has 2 left",
	})
	out := m.View()
	assert.Contains(t, out, "Low stock")
	assert.Contains(t, out, "Widget has 2 left")
	assert.Contains(t, out, "WARNING")
	assert.Equal(t, "n1", m.NotificationID())
}
