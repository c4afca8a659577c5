// ABOUTME: Malgo-backed playback device using the miniaudio library
// ABOUTME: Pulls PCM from the session stream on the audio callback thread
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/intone-audio/intone-go/pkg/audio"
)

// Malgo opens one miniaudio playback device per session. Unlike the
// oto backend there is no process-wide context to share, so each session
// carries its own malgo context and releases it on Close.
type Malgo struct{}

// NewMalgo creates a Device backed by malgo/miniaudio.
func NewMalgo() Device {
	return &Malgo{}
}

func (d *Malgo) Begin(format audio.Format, stream io.Reader) (Session, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid output format %dHz/%dch: %w",
			format.SampleRate, format.Channels, ErrPlaybackUnavailable)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context init failed: %v: %w", err, ErrPlaybackUnavailable)
	}

	s := &malgoSession{ctx: ctx, stream: stream}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			s.fill(pOutput)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		s.teardownContext()
		return nil, fmt.Errorf("malgo device init failed: %v: %w", err, ErrPlaybackUnavailable)
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		s.teardownContext()
		return nil, fmt.Errorf("malgo device start failed: %v: %w", err, ErrPlaybackUnavailable)
	}

	log.Printf("Audio output started: %dHz, %d channels, 16-bit (malgo)",
		format.SampleRate, format.Channels)
	return s, nil
}

type malgoSession struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	stream io.Reader

	mu     sync.Mutex
	closed bool
	done   bool
}

// fill copies PCM bytes from the stream into the device buffer,
// zero-filling once the stream is exhausted.
func (s *malgoSession) fill(out []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for n < len(out) && !s.done {
		read, err := s.stream.Read(out[n:])
		n += read
		if err != nil {
			s.done = true
		}
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
}

func (s *malgoSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.device.Stop(); err != nil {
		log.Printf("Warning: malgo device stop error: %v", err)
	}
	s.device.Uninit()
	s.teardownContext()
	return nil
}

func (s *malgoSession) teardownContext() {
	if err := s.ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	s.ctx.Free()
}
