// ABOUTME: Raw PCM audio decoder
// ABOUTME: De-interleaves 16-bit little-endian frames into normalized channels
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/intone-audio/intone-go/pkg/audio"
)

// PCM16Decoder decodes headerless 16-bit little-endian PCM
type PCM16Decoder struct {
	format audio.Format
}

// NewPCM16 creates a PCM decoder for the given stream format
func NewPCM16(format audio.Format) (Decoder, error) {
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate for PCM decoder: %d", format.SampleRate)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid channel count for PCM decoder: %d", format.Channels)
	}

	return &PCM16Decoder{format: format}, nil
}

// Decode converts raw PCM bytes to a sample buffer.
// Input is channel-minor interleaved; each 16-bit value is divided by
// 32768 so the output lands in [-1.0, 1.0). A byte length that is not
// a whole number of frames returns audio.ErrMalformedAudio. Empty
// input yields a zero-frame buffer.
func (d *PCM16Decoder) Decode(data []byte) (*audio.Buffer, error) {
	frameSize := d.format.Channels * 2
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("pcm byte length %d is not a whole number of %d-byte frames: %w", len(data), frameSize, audio.ErrMalformedAudio)
	}

	frames := len(data) / frameSize
	buf := audio.NewBuffer(d.format, frames)

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < d.format.Channels; ch++ {
			offset := (frame*d.format.Channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(data[offset:]))
			buf.Data[ch][frame] = audio.SampleFromInt16(sample)
		}
	}

	return buf, nil
}
