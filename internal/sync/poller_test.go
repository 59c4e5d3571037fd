package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/model"
)

type fakeFetcher struct {
	snapshots atomic.Int32
	stats     atomic.Int32
	err       error
	// block, when set, makes the first snapshot fetch hang until closed.
	block chan struct{}
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context, limit int) ([]model.Notification, error) {
	call := f.snapshots.Add(1)
	if f.block != nil && call == 1 {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return []model.Notification{n("1", false)}, nil
}

func (f *fakeFetcher) FetchStats(ctx context.Context) (model.Stats, error) {
	f.stats.Add(1)
	if f.err != nil {
		return model.Stats{}, f.err
	}
	return model.Stats{Total: 1, Unread: 1, ByType: map[string]int{}}, nil
}

func newTestPoller(f *fakeFetcher, period time.Duration, enabled bool) *Poller {
	return New(f, Options{
		Period:       period,
		Limit:        10,
		FetchTimeout: time.Second,
		Enabled:      enabled,
		Logger:       zerolog.Nop(),
	})
}

func TestStartWaitsOneFullPeriod(t *testing.T) {
	f := &fakeFetcher{}
	p := newTestPoller(f, 300*time.Millisecond, true)
	t.Cleanup(p.Stop)

	require.True(t, p.Start())
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, f.snapshots.Load(), "no fetch before the first period elapses")

	require.Eventually(t, func() bool { return f.snapshots.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, f.stats.Load(), int32(1))
}

func TestStartIsNoopWhenDisabledOrActive(t *testing.T) {
	p := newTestPoller(&fakeFetcher{}, time.Hour, false)
	assert.False(t, p.Start())
	assert.False(t, p.Active())

	p.SetEnabled(true)
	t.Cleanup(p.Stop)
	assert.True(t, p.Active())
	assert.False(t, p.Start(), "second start must not schedule another loop")
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	f := &fakeFetcher{}
	p := newTestPoller(f, 50*time.Millisecond, true)
	require.True(t, p.Start())

	require.Eventually(t, func() bool { return f.snapshots.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	p.Stop()
	assert.False(t, p.Active())

	// Let any cycle spawned just before Stop finish.
	time.Sleep(20 * time.Millisecond)
	after := f.snapshots.Load()
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, after, f.snapshots.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	p := newTestPoller(&fakeFetcher{}, time.Hour, true)
	p.Stop()

	require.True(t, p.Start())
	p.Stop()
	p.Stop()
	assert.False(t, p.Active())
	assert.True(t, p.Enabled(), "stop does not clear the auto refresh flag")
}

func TestToggleDrivesTransitions(t *testing.T) {
	p := newTestPoller(&fakeFetcher{}, time.Hour, true)
	require.True(t, p.Start())

	assert.False(t, p.Toggle())
	assert.False(t, p.Active())

	assert.True(t, p.Toggle())
	assert.True(t, p.Active())
	p.Stop()
}

func TestStalledFetchDoesNotBlockNextTick(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	p := newTestPoller(f, 50*time.Millisecond, true)
	t.Cleanup(func() {
		p.Stop()
		close(f.block)
	})

	require.True(t, p.Start())
	require.Eventually(t, func() bool { return f.snapshots.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestSetPeriodRestartsActiveLoop(t *testing.T) {
	f := &fakeFetcher{}
	p := newTestPoller(f, time.Hour, true)
	t.Cleanup(p.Stop)
	require.True(t, p.Start())

	p.SetPeriod(50 * time.Millisecond)

	assert.True(t, p.Active())
	assert.Equal(t, 50*time.Millisecond, p.Status().Period)
	require.Eventually(t, func() bool { return f.snapshots.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestRefreshNowDeliversBothResults(t *testing.T) {
	p := newTestPoller(&fakeFetcher{}, time.Hour, false)

	p.RefreshNow()
	wait := p.WaitForNextResult()

	var gotSnapshot, gotStats bool
	for i := 0; i < 2; i++ {
		switch msg := wait().(type) {
		case SnapshotMsg:
			gotSnapshot = true
			assert.NoError(t, msg.Err)
			assert.Len(t, msg.Items, 1)
		case StatsMsg:
			gotStats = true
			assert.NoError(t, msg.Err)
			assert.Equal(t, 1, msg.Stats.Unread)
		}
	}
	assert.True(t, gotSnapshot)
	assert.True(t, gotStats)

	require.Eventually(t, func() bool { return !p.Status().LastSync.IsZero() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, SyncIdle, p.Status().State)
}

func TestRefreshSnapshotOnlyFetchesSnapshot(t *testing.T) {
	f := &fakeFetcher{}
	p := newTestPoller(f, time.Hour, false)

	p.RefreshSnapshot()
	msg := p.WaitForNextResult()()

	assert.IsType(t, SnapshotMsg{}, msg)
	assert.Zero(t, f.stats.Load())
}

func TestFetchErrorIsReportedInMessage(t *testing.T) {
	boom := errors.New("boom")
	p := newTestPoller(&fakeFetcher{err: boom}, time.Hour, false)

	p.RefreshSnapshot()
	msg, ok := p.WaitForNextResult()().(SnapshotMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, boom)

	require.Eventually(t, func() bool { return p.Status().State == SyncError }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, p.Status().Error, boom)
}

func TestNilSourceSkipsCycles(t *testing.T) {
	p := New(nil, Options{Period: time.Hour, Logger: zerolog.Nop()})
	p.RefreshNow()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, SyncIdle, p.Status().State)
	assert.True(t, p.Status().LastSync.IsZero())

	f := &fakeFetcher{}
	p.SetSource(f)
	p.RefreshSnapshot()
	_, ok := p.WaitForNextResult()().(SnapshotMsg)
	assert.True(t, ok)
	assert.EqualValues(t, 1, f.snapshots.Load())
}

// slowFetcher never answers on its own and fails once the cycle deadline
// passes.
type slowFetcher struct{}

func (slowFetcher) FetchSnapshot(ctx context.Context, limit int) ([]model.Notification, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowFetcher) FetchStats(ctx context.Context) (model.Stats, error) {
	<-ctx.Done()
	return model.Stats{}, ctx.Err()
}

func TestSetFetchTimeoutAppliesToNextCycle(t *testing.T) {
	p := New(slowFetcher{}, Options{
		Period:       time.Hour,
		FetchTimeout: time.Hour,
		Logger:       zerolog.Nop(),
	})
	p.SetFetchTimeout(0)
	p.SetFetchTimeout(50 * time.Millisecond)

	p.RefreshSnapshot()
	got := make(chan SnapshotMsg, 1)
	go func() {
		if msg, ok := p.WaitForNextResult()().(SnapshotMsg); ok {
			got <- msg
		}
	}()

	select {
	case msg := <-got:
		assert.ErrorIs(t, msg.Err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("cycle ignored the new fetch timeout")
	}
}
