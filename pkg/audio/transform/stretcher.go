// ABOUTME: Time-stretch and pitch-shift engine over sample buffers
// ABOUTME: Granular overlap-add with Hann windows at 50 percent overlap
package transform

import (
	"io"
	"math"
	"sync"

	"github.com/intone-audio/intone-go/pkg/audio"
)

const (
	// GrainFrames is the synthesis grain length
	GrainFrames = 1024
	// HopFrames is the output advance per grain; half the grain so
	// Hann windows sum to one across overlaps
	HopFrames = 512
)

// PitchRatio converts a shift in cents to a frequency ratio
func PitchRatio(cents float64) float64 {
	return math.Pow(2, cents/1200.0)
}

// Stretcher produces playback-rate-adjusted, pitch-shifted audio from
// an immutable buffer. Playback rate moves the grain read head through
// the source (input advances HopFrames*rate per output hop) while the
// pitch ratio resamples within each grain, so the two are independent.
//
// Rate 1.0 with pitch ratio 1.0 at construction uses a direct copy
// path that reproduces source samples exactly.
//
// Safe for concurrent use: the playback device drains blocks while the
// controller adjusts parameters.
type Stretcher struct {
	mu       sync.Mutex
	buf      *audio.Buffer
	rate     float64
	pitch    float64
	identity bool

	inPos    float64     // next grain start, in source frames
	carry    [][]float64 // windowed tail half of the previous grain
	hann     []float64
	tailSent bool
}

// NewStretcher creates a stretcher positioned at startFrame.
// Rate and pitchRatio must be positive; the playback controller
// validates user-facing ranges before they reach here.
func NewStretcher(buf *audio.Buffer, startFrame int, rate, pitchRatio float64) *Stretcher {
	if startFrame < 0 {
		startFrame = 0
	}

	hann := make([]float64, GrainFrames)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(GrainFrames))
	}

	channels := len(buf.Data)
	carry := make([][]float64, channels)
	for ch := range carry {
		carry[ch] = make([]float64, HopFrames)
	}

	return &Stretcher{
		buf:      buf,
		rate:     rate,
		pitch:    pitchRatio,
		identity: rate == 1.0 && pitchRatio == 1.0,
		inPos:    float64(startFrame),
		carry:    carry,
		hann:     hann,
	}
}

// SetParams changes rate and pitch ratio. The change takes effect at
// the next block boundary. A stream running on the direct copy path
// moves to grain synthesis permanently once a non-neutral parameter
// arrives.
func (s *Stretcher) SetParams(rate, pitchRatio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rate = rate
	s.pitch = pitchRatio
	if s.identity && (rate != 1.0 || pitchRatio != 1.0) {
		s.identity = false
	}
}

// NextBlock returns the next HopFrames frames, one slice per channel.
// Returns io.EOF once the source is exhausted and the overlap tail has
// been flushed. The final block may be zero-padded.
func (s *Stretcher) NextBlock() ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity {
		return s.copyBlock()
	}
	return s.synthesizeBlock()
}

// copyBlock serves the neutral-parameter path with exact source frames
func (s *Stretcher) copyBlock() ([][]float64, error) {
	frames := s.buf.Frames()
	start := int(s.inPos)
	if start >= frames {
		return nil, io.EOF
	}

	block := s.newBlock()
	n := frames - start
	if n > HopFrames {
		n = HopFrames
	}
	for ch := range s.buf.Data {
		copy(block[ch], s.buf.Data[ch][start:start+n])
	}

	s.inPos += HopFrames
	return block, nil
}

// synthesizeBlock runs one grain of overlap-add synthesis
func (s *Stretcher) synthesizeBlock() ([][]float64, error) {
	frames := s.buf.Frames()

	if s.inPos >= float64(frames) {
		if s.tailSent {
			return nil, io.EOF
		}
		s.tailSent = true
		block := s.carry
		s.carry = s.newBlock()
		return block, nil
	}

	block := s.newBlock()
	nextCarry := s.newBlock()

	for ch := range s.buf.Data {
		src := s.buf.Data[ch]
		for i := 0; i < GrainFrames; i++ {
			sample := s.hann[i] * readInterpolated(src, s.inPos+float64(i)*s.pitch)
			if i < HopFrames {
				block[ch][i] = s.carry[ch][i] + sample
			} else {
				nextCarry[ch][i-HopFrames] = sample
			}
		}
	}

	s.carry = nextCarry
	s.inPos += HopFrames * s.rate
	return block, nil
}

func (s *Stretcher) newBlock() [][]float64 {
	block := make([][]float64, len(s.buf.Data))
	for ch := range block {
		block[ch] = make([]float64, HopFrames)
	}
	return block
}

// readInterpolated samples the source at a fractional position,
// reading silence outside the buffer
func readInterpolated(src []float64, pos float64) float64 {
	if pos < 0 {
		return 0
	}

	idx := int(pos)
	if idx >= len(src) {
		return 0
	}

	frac := pos - float64(idx)
	s0 := src[idx]
	s1 := 0.0
	if idx+1 < len(src) {
		s1 = src[idx+1]
	}

	return s0*(1.0-frac) + s1*frac
}
