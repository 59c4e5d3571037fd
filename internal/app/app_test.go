package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
	"github.com/nhle/notification-center/internal/store"
	appsync "github.com/nhle/notification-center/internal/sync"
	"github.com/nhle/notification-center/internal/ui/command"
	"github.com/nhle/notification-center/internal/ui/history"
)

type fakeSource struct {
	mu          sync.Mutex
	markReadErr error
	marked      []string
	markedAll   int
	created     []model.TestNotification
}

func (f *fakeSource) FetchSnapshot(ctx context.Context, limit int) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeSource) FetchStats(ctx context.Context) (model.Stats, error) {
	return model.Stats{}, nil
}

func (f *fakeSource) ValidateConnection(ctx context.Context) (string, error) {
	return "ok", nil
}

func (f *fakeSource) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return f.markReadErr
}

func (f *fakeSource) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedAll++
	return nil
}

func (f *fakeSource) CreateTest(ctx context.Context, n model.TestNotification) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n)
	return &model.Notification{ID: "t1", Type: n.Type, Title: n.Title}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	records []model.SyncRecord
}

func (s *fakeStore) RecordSync(ctx context.Context, rec model.SyncRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) RecentSyncs(ctx context.Context, filter store.SyncFilter) ([]model.SyncRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records), nil
}

func (s *fakeStore) SyncSummary(ctx context.Context) (store.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Summary{Total: len(s.records)}, nil
}

func (s *fakeStore) PruneSyncs(ctx context.Context, keep int) (int64, error) { return 0, nil }
func (s *fakeStore) Close() error                                           { return nil }

func newTestModel(t *testing.T, src source.Source, st store.Store) Model {
	t.Helper()
	cfg := model.DefaultAppConfig()
	cfg.API.BaseURL = "http://localhost:8083/api/notifications"
	cfg.Refresh.Auto = false
	cfg.Alert.Sound = false

	m := New(Options{
		Config:  cfg,
		Source:  src,
		Store:   st,
		Connect: func(model.AppConfig, string) source.Source { return src },
		Logger:  zerolog.Nop(),
	})
	t.Cleanup(m.Shutdown)
	return send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func notif(id string, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.TypeOrderCreated,
		Severity:  model.SeverityInfo,
		Title:     "Order " + id,
		Timestamp: time.Now(),
		Read:      read,
	}
}

func TestSnapshotPopulatesListAndHeader(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, nil)

	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("2", false), notif("1", true)}})

	assert.Equal(t, 1, m.session.UnreadCount())
	sel, ok := m.list.Selected()
	require.True(t, ok)
	assert.Equal(t, "2", sel.ID)
	assert.Contains(t, m.View(), "1 unread")
}

func TestSnapshotErrorFillsErrorLineUntilDismissed(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, nil)
	full := m.layout.ContentHeight()

	m = send(t, m, appsync.SnapshotMsg{Err: errors.New("connection refused")})
	assert.Equal(t, "Error fetching notifications: connection refused", m.session.Err())
	assert.Equal(t, full-1, m.layout.ContentHeight(), "error line takes one row")

	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("1", false)}})
	assert.NotEmpty(t, m.session.Err(), "a later success keeps the error")

	m = send(t, m, runeKey("e"))
	assert.Empty(t, m.session.Err())
	assert.Equal(t, full, m.layout.ContentHeight())
}

func TestMarkReadKeepsOptimisticStateOnFailure(t *testing.T) {
	src := &fakeSource{markReadErr: errors.New("503 Service Unavailable")}
	m := newTestModel(t, src, nil)
	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("1", false)}})

	m, cmd := sendCmd(t, m, runeKey("m"))
	n, _ := m.session.Find("1")
	assert.True(t, n.Read, "applied before the server answers")

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	m = send(t, m, msgs[0])

	assert.Equal(t, []string{"1"}, src.marked)
	assert.Equal(t, "Error marking notification as read: 503 Service Unavailable", m.session.Err())
	n, _ = m.session.Find("1")
	assert.True(t, n.Read, "no rollback")
}

func TestMarkReadRetriesAlreadyReadItems(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src, nil)
	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("1", true)}})

	m, cmd := sendCmd(t, m, runeKey("m"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	require.IsType(t, actionResultMsg{}, msgs[0])
	m = send(t, m, msgs[0])

	msgs = runCmd(m.markRead("missing"))
	require.Len(t, msgs, 1)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, []string{"1", "missing"}, src.marked)
}

func TestMarkAllRead(t *testing.T) {
	src := &fakeSource{}
	st := &fakeStore{}
	m := newTestModel(t, src, st)
	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("1", false), notif("2", false)}})

	m, cmd := sendCmd(t, m, runeKey("M"))
	assert.Zero(t, m.session.UnreadCount())

	for _, msg := range runCmd(cmd) {
		_, journalCmd := sendCmd(t, m, msg)
		runCmd(journalCmd)
	}
	assert.Equal(t, 1, src.markedAll)

	st.mu.Lock()
	defer st.mu.Unlock()
	require.Len(t, st.records, 1)
	assert.Equal(t, model.SyncKindAction, st.records[0].Kind)
	assert.Equal(t, opMarkAllRead, st.records[0].Op)
}

func TestCreateTestSchedulesSnapshotRefresh(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src, nil)

	m, cmd := sendCmd(t, m, runeKey("t"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	require.IsType(t, testCreatedMsg{}, msgs[0])

	require.Len(t, src.created, 1)
	created := src.created[0]
	assert.Contains(t, testTypes, created.Type)
	assert.Equal(t, "Test "+created.Type, created.Title)
	assert.Equal(t, "This is a test notification of type "+created.Type, created.Message)
	assert.Contains(t, model.Severities, created.Severity)

	start := time.Now()
	_, cmd = sendCmd(t, m, msgs[0])
	assert.Equal(t, []tea.Msg{refreshSnapshotMsg{}}, runCmd(cmd))
	assert.GreaterOrEqual(t, time.Since(start), testRefreshDelay)
}

func TestFilterKeysDriveSession(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, nil)
	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("1", false), notif("2", true)}})

	m = send(t, m, runeKey("u"))
	assert.True(t, m.session.Filter().UnreadOnly)
	assert.Len(t, m.session.View(), 1)
	assert.Contains(t, m.keyHints(), "filter: unread")

	m = send(t, m, runeKey("x"))
	assert.True(t, m.session.Filter().IsNeutral())
	assert.Len(t, m.session.View(), 2)
}

func TestPaletteCommands(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, nil)
	m = send(t, m, appsync.SnapshotMsg{Items: []model.Notification{notif("1", false)}})

	m = send(t, m, command.CommandMsg{Name: command.CmdSeverity, Args: []string{"ERROR"}})
	assert.Equal(t, model.SeverityError, m.session.Filter().Severity)
	assert.Empty(t, m.session.View())

	m = send(t, m, command.CommandMsg{Name: command.CmdSound, Args: []string{"on"}})
	assert.True(t, m.session.SoundEnabled())

	m = send(t, m, command.CommandMsg{Name: command.CmdInterval, Args: []string{"1500"}})
	assert.Equal(t, 1500*time.Millisecond, m.poller.Status().Period)

	m = send(t, m, command.CommandMsg{Name: command.CmdStats})
	assert.Equal(t, ViewStats, m.currentView)
}

func TestHistoryViewLoadsJournal(t *testing.T) {
	st := &fakeStore{}
	m := newTestModel(t, &fakeSource{}, st)

	runCmd(m.applyStats(appsync.StatsMsg{Stats: model.Stats{Total: 4, Unread: 2}}))

	m, cmd := sendCmd(t, m, runeKey("h"))
	assert.Equal(t, ViewHistory, m.currentView)

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	loaded, ok := msgs[0].(history.LoadedMsg)
	require.True(t, ok)
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, model.SyncKindStats, loaded.Records[0].Kind)
	assert.Equal(t, 4, loaded.Records[0].Items)
}

func TestFirstRunOpensSettings(t *testing.T) {
	m := New(Options{Config: model.DefaultAppConfig(), Logger: zerolog.Nop()})
	t.Cleanup(m.Shutdown)

	assert.Equal(t, ViewSettings, m.currentView)
	assert.True(t, m.firstRun)
}

func TestConfigReloadAppliesRuntimeSettings(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, nil)

	cfg := *m.cfg
	cfg.Alert.Sound = true
	cfg.Refresh.IntervalMs = 10000
	m = send(t, m, ConfigReloadedMsg{Config: &cfg})

	assert.True(t, m.session.SoundEnabled())
	assert.Equal(t, 10*time.Second, m.poller.Status().Period)

	m = send(t, m, ConfigReloadedMsg{Err: errors.New("bad yaml")})
	assert.Equal(t, 10*time.Second, m.poller.Status().Period, "failed reload keeps settings")
}

func TestConfigReloadReconnectsOnAPIChange(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src, nil)

	var seen []model.APIConfig
	m.connect = func(c model.AppConfig, _ string) source.Source {
		seen = append(seen, c.API)
		return src
	}

	cfg := *m.cfg
	cfg.Alert.Sound = true
	m = send(t, m, ConfigReloadedMsg{Config: &cfg})
	assert.Empty(t, seen, "unchanged API section keeps the connection")

	cfg.API.TimeoutSec = 7
	cfg.API.RatePerSec = 2
	m = send(t, m, ConfigReloadedMsg{Config: &cfg})
	require.Len(t, seen, 1)
	assert.Equal(t, 7, seen[0].TimeoutSec)
	assert.Equal(t, 7, m.cfg.API.TimeoutSec)
}

func TestQuitStopsPoller(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, nil)
	m.poller.SetEnabled(true)
	require.True(t, m.poller.Active())

	_, cmd := sendCmd(t, m, runeKey("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.poller.Active())
}
