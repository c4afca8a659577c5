// ABOUTME: Synthesis boundary types shared by all speech backends
// ABOUTME: Defines the Synthesizer interface and its raw PCM result
package synth

import (
	"context"

	"github.com/intone-audio/intone-go/pkg/audio"
)

// DefaultFormat is the interchange format synthesis backends produce
// unless configured otherwise: 24 kHz mono s16le.
var DefaultFormat = audio.Format{SampleRate: 24000, Channels: 1}

// Request describes one utterance to synthesize
type Request struct {
	Text  string
	Voice string
}

// Result carries raw interleaved s16le PCM from a synthesis backend
type Result struct {
	PCM    []byte
	Format audio.Format
}

// Synthesizer turns text into raw PCM audio
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
}
