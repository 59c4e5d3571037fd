// Package alert sounds a short tone when new notifications arrive.
package alert

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// playTimeout bounds one playback so a wedged player cannot hold the
// in-progress flag forever.
const playTimeout = 5 * time.Second

// Trigger decides whether to sound the arrival tone and plays it in the
// background. A tone already playing suppresses another one.
type Trigger struct {
	log     zerolog.Logger
	clip    []byte
	playing atomic.Bool

	mu     sync.Mutex
	player Player
}

// NewTrigger creates a Trigger playing DefaultTone through player.
func NewTrigger(player Player, log zerolog.Logger) *Trigger {
	return &Trigger{
		log:    log,
		clip:   DefaultTone.WAV(),
		player: player,
	}
}

// SetPlayer swaps the output device.
func (t *Trigger) SetPlayer(p Player) {
	t.mu.Lock()
	t.player = p
	t.mu.Unlock()
}

// MaybeAlert plays the tone when hasNew and soundEnabled are both true.
// It returns immediately and reports whether playback was started.
// Playback failures are logged and otherwise ignored.
func (t *Trigger) MaybeAlert(hasNew, soundEnabled bool) bool {
	if !hasNew || !soundEnabled {
		return false
	}

	t.mu.Lock()
	player := t.player
	t.mu.Unlock()
	if player == nil {
		return false
	}

	if !t.playing.CompareAndSwap(false, true) {
		t.log.Debug().Msg("tone already playing, skipped")
		return false
	}

	go func() {
		defer t.playing.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()

		if err := player.Play(ctx, t.clip); err != nil {
			t.log.Debug().Err(err).Msg("alert tone failed")
		}
	}()
	return true
}
