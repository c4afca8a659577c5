// ABOUTME: Deterministic offline voice for keyless use and tests
// ABOUTME: Renders vowel-like formant tones paced by the request words
package synth

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/intone-audio/intone-go/pkg/audio"
)

const (
	mockWordBase    = 160 * time.Millisecond
	mockWordPerRune = 15 * time.Millisecond
	mockWordMax     = 420 * time.Millisecond
	mockGap         = 70 * time.Millisecond
	mockRampFrames  = 240
)

// Mock synthesizes a deterministic stand-in voice with no network or
// keys: each word becomes a short vowel-like tone whose formants are
// picked by hashing the word, and the voice name picks the register.
// The same request always produces the same bytes.
type Mock struct {
	format audio.Format
}

// NewMock creates the offline synthesizer
func NewMock() *Mock {
	return &Mock{format: DefaultFormat}
}

func (m *Mock) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fundamental := 96.0 + float64(wordHash(req.Voice)%10)*14.0

	var pcm []byte
	for i, word := range strings.Fields(req.Text) {
		if i > 0 {
			pcm = appendSilence(pcm, m.frames(mockGap))
		}

		dur := mockWordBase + time.Duration(len([]rune(word)))*mockWordPerRune
		if dur > mockWordMax {
			dur = mockWordMax
		}
		pcm = m.appendTone(pcm, word, fundamental, m.frames(dur))
	}

	return &Result{PCM: pcm, Format: m.format}, nil
}

func (m *Mock) frames(d time.Duration) int {
	return int(d.Seconds() * float64(m.format.SampleRate))
}

// appendTone renders one word as fundamental plus two hashed formants
func (m *Mock) appendTone(pcm []byte, word string, fundamental float64, frames int) []byte {
	h := wordHash(word)
	f1 := 350.0 + float64(h%450)
	f2 := 950.0 + float64((h>>4)%1400)

	rate := float64(m.format.SampleRate)
	for i := 0; i < frames; i++ {
		t := float64(i) / rate
		v := 0.45*math.Sin(2*math.Pi*fundamental*t) +
			0.25*math.Sin(2*math.Pi*f1*t) +
			0.15*math.Sin(2*math.Pi*f2*t)
		v *= envelope(i, frames)

		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(audio.SampleToInt16(v)))
	}
	return pcm
}

// envelope ramps amplitude in and out to avoid clicks at word edges
func envelope(i, frames int) float64 {
	ramp := mockRampFrames
	if frames < 2*ramp {
		ramp = frames / 2
	}
	if ramp == 0 {
		return 1.0
	}
	if i < ramp {
		return float64(i) / float64(ramp)
	}
	if rem := frames - 1 - i; rem < ramp {
		return float64(rem) / float64(ramp)
	}
	return 1.0
}

func appendSilence(pcm []byte, frames int) []byte {
	return append(pcm, make([]byte, frames*2)...)
}

func wordHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
