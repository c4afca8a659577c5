// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes a whole MP3 stream to a normalized sample buffer
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/intone-audio/intone-go/pkg/audio"
)

// MP3Decoder decodes complete MP3 streams
type MP3Decoder struct{}

// NewMP3 creates an MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to a sample buffer.
// go-mp3 always emits 16-bit stereo at the stream's sample rate, so
// the result is a two-channel buffer.
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse mp3 stream: %v: %w", err, audio.ErrMalformedAudio)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 frames: %v: %w", err, audio.ErrMalformedAudio)
	}

	format := audio.Format{SampleRate: dec.SampleRate(), Channels: 2}
	pcmDec, err := NewPCM16(format)
	if err != nil {
		return nil, err
	}
	return pcmDec.Decode(pcm)
}
