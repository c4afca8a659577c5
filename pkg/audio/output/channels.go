// ABOUTME: Channel count adapter for PCM byte streams
// ABOUTME: Mixes to mono and replicates to match a device channel layout
package output

import (
	"encoding/binary"
	"io"
)

// channelReader rewrites 16-bit interleaved frames from one channel
// count to another. Input channels are averaged to mono and the result
// is written to every output channel, which is exact for the dominant
// mono-to-stereo case.
type channelReader struct {
	src     io.Reader
	in      int
	out     int
	frame   []byte
	pending []byte
}

func newChannelReader(src io.Reader, in, out int) *channelReader {
	return &channelReader{
		src:   src,
		in:    in,
		out:   out,
		frame: make([]byte, in*2),
	}
}

// Read fills p with frames in the output channel layout
func (c *channelReader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if len(c.pending) == 0 {
			if _, err := io.ReadFull(c.src, c.frame); err != nil {
				if total > 0 {
					return total, nil
				}
				return 0, io.EOF
			}

			sum := 0
			for ch := 0; ch < c.in; ch++ {
				sum += int(int16(binary.LittleEndian.Uint16(c.frame[ch*2:])))
			}
			mono := int16(sum / c.in)

			out := make([]byte, c.out*2)
			for ch := 0; ch < c.out; ch++ {
				binary.LittleEndian.PutUint16(out[ch*2:], uint16(mono))
			}
			c.pending = out
		}

		n := copy(p[total:], c.pending)
		c.pending = c.pending[n:]
		total += n
	}

	return total, nil
}
