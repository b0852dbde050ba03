package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
)

// Context returns the shared oto context, initializing it on first use.
// All playback, tones and decoded radio streams alike, goes through
// this single 44.1 kHz stereo context.
func Context() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-readyChan
		}
	})
	return otoCtx, otoInitErr
}

// loopReader repeats a PCM buffer forever. It never returns io.EOF, so
// the owning player rings until explicitly stopped.
type loopReader struct {
	pcm []byte
	pos int
}

func (r *loopReader) Read(p []byte) (int, error) {
	if len(r.pcm) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.pcm[r.pos:])
	r.pos += n
	if r.pos == len(r.pcm) {
		r.pos = 0
	}
	return n, nil
}

// Player is a running, looped playback of an audio source. Stop is
// idempotent and SetVolume applies live without interrupting playback.
type Player struct {
	mu     sync.Mutex
	p      *oto.Player
	closed bool
}

// StartTone begins looped playback of a tone at the given volume
// (0.0-1.0). The returned Player keeps ringing until Stop.
func StartTone(def SoundDefinition, volume float64) (*Player, error) {
	pcm := GeneratePCM(def)
	return StartPCM(&loopReader{pcm: pcm}, volume)
}

// StartPCM begins playback of raw stereo 16-bit LE PCM from src at the
// given volume. Used directly by the radio path, which feeds decoded
// stream audio.
func StartPCM(src io.Reader, volume float64) (*Player, error) {
	ctx, err := Context()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}

	p := ctx.NewPlayer(src)
	p.SetVolume(clamp01(volume))
	p.Play()
	return &Player{p: p}, nil
}

// SetVolume changes the playback volume (0.0-1.0) of the running player.
func (pl *Player) SetVolume(volume float64) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.closed {
		return
	}
	pl.p.SetVolume(clamp01(volume))
}

// Stop halts playback and releases the underlying player. Stopping an
// already-stopped player is a no-op.
func (pl *Player) Stop() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.closed {
		return
	}
	pl.closed = true
	pl.p.Pause()
	pl.p.Close()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
