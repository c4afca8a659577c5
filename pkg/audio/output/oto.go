// ABOUTME: Oto-based audio output implementation
// ABOUTME: Manages the process-wide oto context and per-playback player sessions
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/intone-audio/intone-go/pkg/audio/resample"
)

// oto allows exactly one context per process, so the context and its
// format are package state. The first Begin fixes the device format;
// later sessions with other formats are adapted to it. The context is
// resumed while sessions exist and suspended when the last one closes.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoFormat   audio.Format
	otoSessions int
)

// Oto output device using the oto library
type Oto struct{}

// NewOto creates an oto-backed output device
func NewOto() Device {
	return &Oto{}
}

// Begin acquires the shared context and starts a player on the stream
func (o *Oto) Begin(format audio.Format, stream io.Reader) (Session, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid playback format %dHz/%dch: %w",
			format.SampleRate, format.Channels, ErrPlaybackUnavailable)
	}

	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("create oto context: %v: %w", err, ErrPlaybackUnavailable)
		}

		<-readyChan

		otoCtx = ctx
		otoFormat = format
		log.Printf("Audio output initialized: %dHz, %d channels", format.SampleRate, format.Channels)
	}

	src, err := adaptStream(stream, format, otoFormat)
	if err != nil {
		return nil, err
	}

	if otoSessions == 0 {
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("resume oto context: %v: %w", err, ErrPlaybackUnavailable)
		}
	}

	player := otoCtx.NewPlayer(src)
	player.Play()
	otoSessions++

	return &otoSession{player: player}, nil
}

// adaptStream converts a stream to the device format when they differ
func adaptStream(stream io.Reader, from, to audio.Format) (io.Reader, error) {
	src := stream

	if from.Channels != to.Channels {
		src = newChannelReader(src, from.Channels, to.Channels)
		log.Printf("Adapting channel count %d -> %d for device", from.Channels, to.Channels)
	}

	if from.SampleRate != to.SampleRate {
		r, err := resample.NewReader(src, from.SampleRate, to.SampleRate, to.Channels)
		if err != nil {
			return nil, fmt.Errorf("resample for device: %w", err)
		}
		src = r
		log.Printf("Resampling %dHz -> %dHz for device", from.SampleRate, to.SampleRate)
	}

	return src, nil
}

// otoSession wraps one oto player
type otoSession struct {
	mu     sync.Mutex
	player *oto.Player
	closed bool
}

// Close stops the player and suspends the context if idle
func (s *otoSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.player.Close()

	otoMu.Lock()
	otoSessions--
	if otoSessions == 0 && otoCtx != nil {
		if serr := otoCtx.Suspend(); serr != nil {
			log.Printf("Suspend audio context: %v", serr)
		}
	}
	otoMu.Unlock()

	if err != nil {
		return fmt.Errorf("close oto player: %w", err)
	}
	return nil
}
