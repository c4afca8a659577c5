// ABOUTME: PCM byte stream adapter over the transform stretcher
// ABOUTME: Feeds output devices interleaved 16-bit LE samples until closed
package playback

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/intone-audio/intone-go/pkg/audio/transform"
)

// pcmStream turns stretcher blocks into the interleaved little-endian
// byte stream output devices consume. Closing it ends the stream early
// so a torn-down session stops pulling from the buffer.
type pcmStream struct {
	mu      sync.Mutex
	src     *transform.Stretcher
	pending []byte
	closed  bool
}

func newPCMStream(src *transform.Stretcher) *pcmStream {
	return &pcmStream{src: src}
}

func (p *pcmStream) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for total < len(b) {
		if p.closed {
			break
		}

		if len(p.pending) == 0 {
			block, err := p.src.NextBlock()
			if err != nil {
				break
			}
			p.pending = interleave(block)
			continue
		}

		n := copy(b[total:], p.pending)
		p.pending = p.pending[n:]
		total += n
	}

	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// Close makes all subsequent reads return io.EOF
func (p *pcmStream) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.pending = nil
	return nil
}

// interleave quantizes a channel-major block to channel-minor int16 LE bytes
func interleave(block [][]float64) []byte {
	if len(block) == 0 {
		return nil
	}

	frames := len(block[0])
	out := make([]byte, 0, frames*len(block)*2)
	for i := 0; i < frames; i++ {
		for ch := range block {
			v := audio.SampleToInt16(block[ch][i])
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		}
	}
	return out
}
