package sync

import (
	"context"
	gosync "sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

// SyncState represents the current state of the fetch loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus is a point-in-time view of the poller for the header.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
	Enabled  bool
	Active   bool
	Period   time.Duration
}

// SnapshotMsg is a tea.Msg carrying the outcome of one snapshot fetch.
type SnapshotMsg struct {
	Seq       uint64
	Items     []model.Notification
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// StatsMsg is a tea.Msg carrying the outcome of one stats fetch.
type StatsMsg struct {
	Seq       uint64
	Stats     model.Stats
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

const (
	// DefaultPeriod is the reference refresh cadence.
	DefaultPeriod = 3 * time.Second

	// DefaultLimit is the snapshot size requested from the API.
	DefaultLimit = 100

	// fetchTimeout is the maximum time allowed for a single cycle when
	// none is configured.
	fetchTimeout = 30 * time.Second

	resultBuffer = 32
)

// Options configures a Poller.
type Options struct {
	Period       time.Duration
	Limit        int
	FetchTimeout time.Duration
	Enabled      bool
	Logger       zerolog.Logger
}

// Poller drives periodic snapshot and stats fetches and hands the results
// to the Bubble Tea runtime. It never touches session state itself.
//
// stopCh is non-nil if and only if a periodic loop is scheduled.
type Poller struct {
	log      zerolog.Logger
	resultCh chan tea.Msg
	seq      atomic.Uint64

	mu           gosync.Mutex
	src          source.Fetcher
	enabled      bool
	period       time.Duration
	limit        int
	fetchTimeout time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	inFlight     int
	lastSync     time.Time
	lastErr      error
}

// New creates an idle Poller reading from src. src may be nil until a
// connection is configured; cycles are skipped meanwhile.
func New(src source.Fetcher, opts Options) *Poller {
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = fetchTimeout
	}

	return &Poller{
		src:          src,
		log:          opts.Logger,
		resultCh:     make(chan tea.Msg, resultBuffer),
		enabled:      opts.Enabled,
		period:       opts.Period,
		limit:        opts.Limit,
		fetchTimeout: opts.FetchTimeout,
	}
}

// Start schedules the periodic loop if auto refresh is enabled and no loop
// is running yet. The first cycle runs one full period after Start.
// It reports whether a loop was started.
func (p *Poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.stopCh != nil {
		return false
	}

	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.loop(p.period, p.stopCh, p.doneCh)

	p.log.Debug().Dur("period", p.period).Msg("auto refresh started")
	return true
}

// Stop cancels the periodic loop and waits for it to exit, so no tick
// fires once Stop returns. Cycles already in flight are not cancelled.
// Stopping an idle poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stopCh, p.doneCh
	p.stopCh, p.doneCh = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
	p.log.Debug().Msg("auto refresh stopped")
}

// Toggle flips the auto refresh flag, starting or stopping the loop
// accordingly, and returns the new flag value.
func (p *Poller) Toggle() bool {
	p.mu.Lock()
	p.enabled = !p.enabled
	enabled := p.enabled
	p.mu.Unlock()

	if enabled {
		p.Start()
	} else {
		p.Stop()
	}
	return enabled
}

// SetEnabled sets the auto refresh flag and drives the matching transition.
func (p *Poller) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()

	if enabled {
		p.Start()
	} else {
		p.Stop()
	}
}

// SetPeriod changes the cadence, restarting an active loop so the new
// period applies from now.
func (p *Poller) SetPeriod(d time.Duration) {
	if d <= 0 {
		return
	}

	p.mu.Lock()
	changed := p.period != d
	p.period = d
	active := p.stopCh != nil
	p.mu.Unlock()

	if changed && active {
		p.Stop()
		p.Start()
	}
}

// SetSource swaps the fetcher used by subsequent cycles.
func (p *Poller) SetSource(src source.Fetcher) {
	p.mu.Lock()
	p.src = src
	p.mu.Unlock()
}

// SetFetchTimeout changes the per-cycle deadline used by subsequent cycles.
func (p *Poller) SetFetchTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.fetchTimeout = d
	p.mu.Unlock()
}

// SetLimit changes the snapshot size used by subsequent cycles.
func (p *Poller) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	p.mu.Lock()
	p.limit = limit
	p.mu.Unlock()
}

// Enabled reports the auto refresh flag.
func (p *Poller) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Active reports whether a periodic loop is scheduled.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopCh != nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := SyncStatus{
		State:    SyncIdle,
		LastSync: p.lastSync,
		Error:    p.lastErr,
		Enabled:  p.enabled,
		Active:   p.stopCh != nil,
		Period:   p.period,
	}
	switch {
	case p.inFlight > 0:
		st.State = SyncRunning
	case p.lastErr != nil:
		st.State = SyncError
	}
	return st
}

// RefreshNow runs one snapshot + stats cycle immediately, outside the
// periodic schedule.
func (p *Poller) RefreshNow() {
	go p.runCycle(true, true)
}

// RefreshSnapshot fetches only the snapshot immediately.
func (p *Poller) RefreshSnapshot() {
	go p.runCycle(true, false)
}

// RefreshStats fetches only the stats immediately.
func (p *Poller) RefreshStats() {
	go p.runCycle(false, true)
}

// WaitForNextResult returns a tea.Cmd that waits for the next fetch result.
// It should be issued again after each SnapshotMsg or StatsMsg to keep
// listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		return <-p.resultCh
	}
}

// loop fires one cycle per tick until stop is closed. Each cycle runs on
// its own goroutine so a stalled fetch never delays the next tick.
func (p *Poller) loop(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			go p.runCycle(true, true)
		}
	}
}

// runCycle fetches the snapshot and/or stats concurrently under one
// timeout and publishes each outcome as its own message.
func (p *Poller) runCycle(snapshot, stats bool) {
	p.mu.Lock()
	src := p.src
	if src == nil {
		p.mu.Unlock()
		return
	}
	p.inFlight++
	limit := p.limit
	timeout := p.fetchTimeout
	p.mu.Unlock()

	seq := p.seq.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var snapErr error
	var wg conc.WaitGroup
	if snapshot {
		wg.Go(func() {
			snapErr = p.fetchSnapshot(ctx, src, seq, limit)
		})
	}
	if stats {
		wg.Go(func() {
			p.fetchStats(ctx, src, seq)
		})
	}
	wg.Wait()

	p.mu.Lock()
	p.inFlight--
	if snapshot {
		p.lastErr = snapErr
		if snapErr == nil {
			p.lastSync = time.Now()
		}
	}
	p.mu.Unlock()
}

func (p *Poller) fetchSnapshot(ctx context.Context, src source.Fetcher, seq uint64, limit int) error {
	start := time.Now()
	items, err := src.FetchSnapshot(ctx, limit)
	msg := SnapshotMsg{
		Seq:       seq,
		Items:     items,
		StartedAt: start,
		Duration:  time.Since(start),
		Err:       err,
	}

	if err != nil {
		p.log.Warn().Err(err).Uint64("seq", seq).Msg("snapshot fetch failed")
	} else {
		p.log.Debug().
			Uint64("seq", seq).
			Int("items", len(items)).
			Dur("took", msg.Duration).
			Msg("snapshot fetched")
	}

	p.sendResult(msg)
	return err
}

func (p *Poller) fetchStats(ctx context.Context, src source.Fetcher, seq uint64) {
	start := time.Now()
	stats, err := src.FetchStats(ctx)
	if err != nil {
		p.log.Warn().Err(err).Uint64("seq", seq).Msg("stats fetch failed")
	}

	p.sendResult(StatsMsg{
		Seq:       seq,
		Stats:     stats,
		StartedAt: start,
		Duration:  time.Since(start),
		Err:       err,
	})
}

// sendResult sends a result on the result channel without blocking.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
		p.log.Warn().Msg("result channel full, dropping fetch result")
	}
}
