package alert

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakePlayer) Play(ctx context.Context, wav []byte) error {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.err
}

func TestMaybeAlertOnlyWhenNewAndEnabled(t *testing.T) {
	tests := []struct {
		hasNew, enabled bool
		want            bool
	}{
		{hasNew: false, enabled: false, want: false},
		{hasNew: true, enabled: false, want: false},
		{hasNew: false, enabled: true, want: false},
		{hasNew: true, enabled: true, want: true},
	}
	for _, tt := range tests {
		p := &fakePlayer{}
		trig := NewTrigger(p, zerolog.Nop())

		assert.Equal(t, tt.want, trig.MaybeAlert(tt.hasNew, tt.enabled))
		if tt.want {
			require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		} else {
			time.Sleep(10 * time.Millisecond)
			assert.Zero(t, p.calls.Load())
		}
	}
}

func TestMaybeAlertNeverBlocks(t *testing.T) {
	p := &fakePlayer{release: make(chan struct{})}
	trig := NewTrigger(p, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		trig.MaybeAlert(true, true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("MaybeAlert blocked on the player")
	}

	// A second arrival while the first tone plays is suppressed.
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, trig.MaybeAlert(true, true))

	close(p.release)
	require.Eventually(t, func() bool { return trig.MaybeAlert(true, true) }, time.Second, 5*time.Millisecond)
}

func TestPlayerFailureIsSwallowed(t *testing.T) {
	p := &fakePlayer{err: errors.New("no audio device")}
	trig := NewTrigger(p, zerolog.Nop())

	assert.True(t, trig.MaybeAlert(true, true))
	require.Eventually(t, func() bool { return trig.MaybeAlert(true, true) }, time.Second, 5*time.Millisecond)
}

func TestBellPlayerWritesBEL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BellPlayer{W: &buf}.Play(context.Background(), nil))
	assert.Equal(t, "\a", buf.String())

	assert.IsType(t, BellPlayer{}, DetectPlayer(BellName, &buf))
}

func TestDefaultToneWAV(t *testing.T) {
	wav := DefaultTone.WAV()
	samples := DefaultTone.Samples()

	assert.Equal(t, 4410, samples)
	require.Len(t, wav, 44+samples*2)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(wav[24:28]))

	pcm := wav[44:]
	peak := func(from, to int) int {
		m := 0
		for i := from; i < to; i++ {
			v := int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
			if v < 0 {
				v = -v
			}
			m = max(m, v)
		}
		return m
	}

	peakGain := 0.3
	limit := int(peakGain*float64(math.MaxInt16)) + 1
	head := peak(0, 200)
	tail := peak(samples-200, samples)
	assert.LessOrEqual(t, head, limit)
	assert.Greater(t, head, tail*5, "gain decays over the tone")
}
