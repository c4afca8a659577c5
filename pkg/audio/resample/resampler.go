// ABOUTME: Streaming sample rate converter for PCM byte streams
// ABOUTME: Linear interpolation between adjacent frames with fractional position tracking
package resample

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader converts a 16-bit little-endian interleaved PCM stream from
// one sample rate to another using linear interpolation. The playback
// device wraps its source with one of these when the buffer rate does
// not match the device rate.
type Reader struct {
	src      io.Reader
	channels int
	ratio    float64 // input frames consumed per output frame

	pos     float64   // fractional position between prev and next
	prev    []float64 // one value per channel
	next    []float64
	primed  bool
	srcDone bool

	frame   []byte // staging for one input frame
	pending []byte // produced output not yet delivered
}

// NewReader creates a resampling reader. A matching input and output
// rate passes bytes through untouched.
func NewReader(src io.Reader, inputRate, outputRate, channels int) (*Reader, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates: %d -> %d", inputRate, outputRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	return &Reader{
		src:      src,
		channels: channels,
		ratio:    float64(inputRate) / float64(outputRate),
		prev:     make([]float64, channels),
		next:     make([]float64, channels),
		frame:    make([]byte, channels*2),
	}, nil
}

// Read fills p with resampled PCM bytes
func (r *Reader) Read(p []byte) (int, error) {
	if r.ratio == 1.0 {
		return r.src.Read(p)
	}

	total := 0
	for total < len(p) {
		if len(r.pending) == 0 {
			if err := r.produceFrame(); err != nil {
				if total > 0 {
					return total, nil
				}
				return 0, err
			}
		}

		n := copy(p[total:], r.pending)
		r.pending = r.pending[n:]
		total += n
	}

	return total, nil
}

// produceFrame synthesizes one output frame into the pending buffer
func (r *Reader) produceFrame() error {
	if !r.primed {
		if err := r.readFrame(r.prev); err != nil {
			return err
		}
		if err := r.readFrame(r.next); err != nil {
			// Single-frame input: hold it
			copy(r.next, r.prev)
			r.srcDone = true
		}
		r.primed = true
	}

	for r.pos >= 1.0 {
		copy(r.prev, r.next)
		if r.srcDone {
			return io.EOF
		}
		if err := r.readFrame(r.next); err != nil {
			// Hold the final frame so the stream ends without a step
			copy(r.next, r.prev)
			r.srcDone = true
		}
		r.pos -= 1.0
	}

	out := make([]byte, r.channels*2)
	for ch := 0; ch < r.channels; ch++ {
		interpolated := r.prev[ch]*(1.0-r.pos) + r.next[ch]*r.pos
		binary.LittleEndian.PutUint16(out[ch*2:], uint16(int16(interpolated)))
	}

	r.pending = out
	r.pos += r.ratio
	return nil
}

// readFrame pulls one full input frame from the source
func (r *Reader) readFrame(dst []float64) error {
	if _, err := io.ReadFull(r.src, r.frame); err != nil {
		return io.EOF
	}
	for ch := 0; ch < r.channels; ch++ {
		dst[ch] = float64(int16(binary.LittleEndian.Uint16(r.frame[ch*2:])))
	}
	return nil
}
