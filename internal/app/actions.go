package app

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notification-center/internal/model"
	appsync "github.com/nhle/notification-center/internal/sync"
	"github.com/nhle/notification-center/internal/ui/command"
)

// testRefreshDelay gives the server time to persist a created test
// notification before the list is fetched again.
const testRefreshDelay = 500 * time.Millisecond

// Operation names used in the error line and the sync journal.
const (
	opFetchNotifications = "fetching notifications"
	opFetchStats         = "fetching stats"
	opMarkRead           = "marking notification as read"
	opMarkAllRead        = "marking all notifications as read"
	opCreateTest         = "creating test notification"
)

// testTypes are the notification types picked from for test notifications.
var testTypes = []string{
	model.TypeOrderCreated,
	model.TypeOrderCancelled,
	model.TypeLowStock,
	model.TypePaymentConfirmed,
	model.TypeTest,
}

// actionResultMsg reports the outcome of a remote write action.
type actionResultMsg struct {
	op        string
	startedAt time.Time
	duration  time.Duration
	err       error
}

// testCreatedMsg reports the outcome of a test notification request.
type testCreatedMsg struct {
	result actionResultMsg
}

// refreshSnapshotMsg asks for an out-of-band snapshot fetch.
type refreshSnapshotMsg struct{}

// applySnapshot reconciles a fetched snapshot into the session, or records
// the failure in the error slot. Either way the outcome is journaled.
func (m *Model) applySnapshot(msg appsync.SnapshotMsg) tea.Cmd {
	rec := model.SyncRecord{
		Kind:      model.SyncKindSnapshot,
		Op:        opFetchNotifications,
		StartedAt: msg.StartedAt,
		Duration:  msg.Duration,
	}

	if msg.Err != nil {
		m.session.SetError(opFetchNotifications, msg.Err)
		m.log.Warn().Err(msg.Err).Uint64("seq", msg.Seq).Msg("snapshot fetch failed")
		rec.Error = msg.Err.Error()
		return m.journal.record(rec)
	}

	// Cold start never counts as arrivals.
	fresh := 0
	if len(m.session.Items()) > 0 {
		fresh = len(appsync.NewItems(m.session.Items(), msg.Items))
	}

	if m.session.ApplySnapshot(msg.Items, time.Now()) {
		m.log.Info().Int("new", fresh).Msg("new notifications arrived")
	}
	rec.Items = len(msg.Items)
	rec.NewItems = fresh

	return tea.Batch(m.refreshList(), m.journal.record(rec))
}

func (m *Model) applyStats(msg appsync.StatsMsg) tea.Cmd {
	rec := model.SyncRecord{
		Kind:      model.SyncKindStats,
		Op:        opFetchStats,
		StartedAt: msg.StartedAt,
		Duration:  msg.Duration,
	}

	if msg.Err != nil {
		m.session.SetError(opFetchStats, msg.Err)
		m.log.Warn().Err(msg.Err).Uint64("seq", msg.Seq).Msg("stats fetch failed")
		rec.Error = msg.Err.Error()
		return m.journal.record(rec)
	}

	m.session.ApplyStats(msg.Stats)
	m.statsView.SetStats(m.session.Stats())
	rec.Items = msg.Stats.Total
	return m.journal.record(rec)
}

// markRead flips the notification locally and then asks the server to do
// the same. The local change is kept even if the server call fails. The
// server is asked even when nothing changed locally, so a failed earlier
// attempt can be retried.
func (m *Model) markRead(id string) tea.Cmd {
	var refresh tea.Cmd
	if m.session.MarkReadLocal(id) {
		refresh = m.refreshList()
	}

	src := m.src
	if src == nil {
		return refresh
	}
	timeout := m.cfg.APITimeout()

	return tea.Batch(refresh, func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := src.MarkRead(ctx, id)
		return actionResultMsg{op: opMarkRead, startedAt: start, duration: time.Since(start), err: err}
	})
}

// markAllRead flips every notification locally and then on the server.
func (m *Model) markAllRead() tea.Cmd {
	m.session.MarkAllReadLocal()
	refresh := m.refreshList()

	src := m.src
	if src == nil {
		return refresh
	}
	timeout := m.cfg.APITimeout()

	return tea.Batch(refresh, func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := src.MarkAllRead(ctx)
		return actionResultMsg{op: opMarkAllRead, startedAt: start, duration: time.Since(start), err: err}
	})
}

// handleActionResult surfaces a failed write and refreshes the stats,
// which the write changed either way.
func (m *Model) handleActionResult(msg actionResultMsg) tea.Cmd {
	rec := model.SyncRecord{
		Kind:      model.SyncKindAction,
		Op:        msg.op,
		StartedAt: msg.startedAt,
		Duration:  msg.duration,
	}
	if msg.err != nil {
		m.session.SetError(msg.op, msg.err)
		m.log.Warn().Err(msg.err).Str("op", msg.op).Msg("action failed")
		rec.Error = msg.err.Error()
	}
	m.poller.RefreshStats()
	return m.journal.record(rec)
}

// createTest asks the server for a debug notification. An empty typ picks
// one at random; the severity is always random.
func (m *Model) createTest(typ string) tea.Cmd {
	src := m.src
	if src == nil {
		return nil
	}
	if typ == "" {
		typ = testTypes[rand.Intn(len(testTypes))]
	}
	n := model.TestNotification{
		Type:     typ,
		Title:    "Test " + typ,
		Message:  "This is a test notification of type " + typ,
		Severity: model.Severities[rand.Intn(len(model.Severities))],
	}
	timeout := m.cfg.APITimeout()

	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_, err := src.CreateTest(ctx, n)
		return testCreatedMsg{result: actionResultMsg{
			op:        opCreateTest,
			startedAt: start,
			duration:  time.Since(start),
			err:       err,
		}}
	}
}

func (m *Model) handleTestCreated(msg testCreatedMsg) tea.Cmd {
	res := msg.result
	rec := model.SyncRecord{
		Kind:      model.SyncKindAction,
		Op:        res.op,
		StartedAt: res.startedAt,
		Duration:  res.duration,
	}
	if res.err != nil {
		m.session.SetError(res.op, res.err)
		rec.Error = res.err.Error()
		return m.journal.record(rec)
	}

	refresh := tea.Tick(testRefreshDelay, func(time.Time) tea.Msg {
		return refreshSnapshotMsg{}
	})
	return tea.Batch(refresh, m.journal.record(rec))
}

// executeCommand runs a parsed palette command.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	arg := ""
	if len(c.Args) > 0 {
		arg = c.Args[0]
	}

	switch c.Name {
	case command.CmdRefresh:
		m.poller.RefreshNow()
	case command.CmdReadAll:
		return m.markAllRead()
	case command.CmdTest:
		return m.createTest(arg)
	case command.CmdType:
		f := m.session.Filter()
		f.Type = arg
		m.session.SetFilter(f)
		return m.refreshList()
	case command.CmdSeverity:
		f := m.session.Filter()
		f.Severity = model.Severity(arg)
		m.session.SetFilter(f)
		return m.refreshList()
	case command.CmdUnread:
		m.session.ToggleUnreadOnly()
		return m.refreshList()
	case command.CmdClear:
		m.session.ClearFilters()
		return m.refreshList()
	case command.CmdSound:
		if arg == "" {
			m.session.ToggleSound()
			return nil
		}
		on, _ := command.ParseSwitch(arg)
		m.session.SetSoundEnabled(on)
	case command.CmdAuto:
		if arg == "" {
			m.poller.Toggle()
			return nil
		}
		on, _ := command.ParseSwitch(arg)
		m.poller.SetEnabled(on)
	case command.CmdInterval:
		ms, err := strconv.Atoi(arg)
		if err == nil {
			m.poller.SetPeriod(time.Duration(ms) * time.Millisecond)
		}
	case command.CmdStats:
		m.currentView = ViewStats
	case command.CmdHistory:
		m.currentView = ViewHistory
		return m.journal.load()
	case command.CmdSettings:
		return m.openSettings(false)
	case command.CmdQuit:
		return m.quit()
	}
	return nil
}
