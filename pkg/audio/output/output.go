// ABOUTME: Audio output interface definitions
// ABOUTME: Common session-based interface for playback backends
package output

import (
	"errors"
	"io"

	"github.com/intone-audio/intone-go/pkg/audio"
)

// ErrPlaybackUnavailable indicates the host has no usable audio
// output. Callers degrade to non-audible features when they see it.
var ErrPlaybackUnavailable = errors.New("audio playback unavailable")

// Device starts playback sessions on an output backend
type Device interface {
	// Begin starts playing the PCM byte stream (16-bit little-endian,
	// interleaved, in the given format) and returns the live session.
	// The device drains the stream until EOF or Close.
	Begin(format audio.Format, stream io.Reader) (Session, error)
}

// Session is one active playback run on a device
type Session interface {
	// Close stops playback and releases the session. Safe to call twice.
	Close() error
}
