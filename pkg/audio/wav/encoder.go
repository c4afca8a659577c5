// ABOUTME: WAV encoder for 16-bit PCM
// ABOUTME: Writes a canonical 44-byte RIFF header followed by quantized frames
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/intone-audio/intone-go/pkg/audio"
)

const (
	headerSize    = 44
	fmtChunkSize  = 16
	formatPCM     = 1
	bitsPerSample = 16
)

// Encode writes buf as a 16-bit PCM WAV stream.
// Samples are clamped to [-1.0, 1.0] and quantized with the asymmetric
// rule from audio.SampleToInt16, interleaved in channel-minor order.
func Encode(w io.Writer, buf *audio.Buffer) error {
	if buf == nil {
		return fmt.Errorf("nil buffer")
	}
	if !buf.Format.Valid() {
		return fmt.Errorf("invalid buffer format: %dHz %dch", buf.Format.SampleRate, buf.Format.Channels)
	}
	if len(buf.Data) != buf.Format.Channels {
		return fmt.Errorf("channel count mismatch: format says %d, data has %d", buf.Format.Channels, len(buf.Data))
	}

	frames := buf.Frames()
	for ch := range buf.Data {
		if len(buf.Data[ch]) != frames {
			return fmt.Errorf("ragged channel data: channel %d has %d samples, expected %d", ch, len(buf.Data[ch]), frames)
		}
	}

	channels := buf.Format.Channels
	dataSize := frames * channels * 2

	header := make([]byte, headerSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(buf.Format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(buf.Format.SampleRate*channels*2))
	binary.LittleEndian.PutUint16(header[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	data := make([]byte, dataSize)
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			sample := audio.SampleToInt16(buf.Data[ch][frame])
			offset := (frame*channels + ch) * 2
			binary.LittleEndian.PutUint16(data[offset:], uint16(sample))
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	return nil
}
