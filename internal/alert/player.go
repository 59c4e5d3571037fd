package alert

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Player plays a rendered WAV clip.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// BellName selects the terminal bell instead of an audio player.
const BellName = "bell"

// candidates are tried in order when no player is configured.
var candidates = []string{"paplay", "pw-play", "aplay", "afplay"}

// CommandPlayer plays a clip by handing a temporary file to an external
// audio command.
type CommandPlayer struct {
	Path string
	Args []string
}

// Play writes wav to a temp file and runs the command on it.
func (p CommandPlayer) Play(ctx context.Context, wav []byte) error {
	f, err := os.CreateTemp("", "notifcenter-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(wav); err != nil {
		f.Close()
		return fmt.Errorf("writing tone: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	args := append(append([]string{}, p.Args...), f.Name())
	cmd := exec.CommandContext(ctx, p.Path, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w (%s)", p.Path, err, out)
	}
	return nil
}

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	W io.Writer
}

// Play ignores the clip and writes a BEL character.
func (b BellPlayer) Play(_ context.Context, _ []byte) error {
	_, err := b.W.Write([]byte("\a"))
	return err
}

// DetectPlayer returns the player named by preferred if it is on PATH,
// otherwise the first available candidate, otherwise a bell on bellOut.
func DetectPlayer(preferred string, bellOut io.Writer) Player {
	if preferred == BellName {
		return BellPlayer{W: bellOut}
	}
	if preferred != "" {
		if path, err := exec.LookPath(preferred); err == nil {
			return CommandPlayer{Path: path, Args: playerArgs(preferred)}
		}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return CommandPlayer{Path: path, Args: playerArgs(name)}
		}
	}
	return BellPlayer{W: bellOut}
}

func playerArgs(name string) []string {
	if name == "aplay" {
		return []string{"-q"}
	}
	return nil
}
