package history

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

func TestFormatRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 15, 0, time.Local)

	ok := formatRecord(model.SyncRecord{Kind: model.SyncKindSnapshot, Op: "recent", StartedAt: at, Duration: 42 * time.Millisecond, Items: 10, NewItems: 2})
	assert.Contains(t, ok, "09:30:15")
	assert.Contains(t, ok, "snapshot/recent")
	assert.Contains(t, ok, "10 items, 2 new")

	failed := formatRecord(model.SyncRecord{Kind: model.SyncKindAction, Op: "mark read", StartedAt: at, Error: "503"})
	assert.Contains(t, failed, "fail")
	assert.Contains(t, failed, "503")
}

func TestLoadedThenBack(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 20)
	assert.Contains(t, m.View(), "Loading")

	m, _ = m.Update(LoadedMsg{Summary: store.Summary{Total: 1}, Records: []model.SyncRecord{{Kind: model.SyncKindStats, Op: "stats", StartedAt: time.Now()}}})
	assert.Contains(t, m.View(), "Sync History")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}
