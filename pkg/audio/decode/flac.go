// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes a whole FLAC stream to a normalized sample buffer
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes complete FLAC streams
type FLACDecoder struct{}

// NewFLAC creates a FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts FLAC bytes to a sample buffer.
// Only 16-bit streams are accepted; other bit depths return
// audio.ErrUnsupportedFormat.
func (d *FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse flac stream: %v: %w", err, audio.ErrMalformedAudio)
	}
	defer stream.Close()

	info := stream.Info
	if info.BitsPerSample != 16 {
		return nil, fmt.Errorf("flac bit depth %d (supported: 16): %w", info.BitsPerSample, audio.ErrUnsupportedFormat)
	}

	format := audio.Format{
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
	}
	if !format.Valid() {
		return nil, fmt.Errorf("flac stream declares %dHz %dch: %w", format.SampleRate, format.Channels, audio.ErrMalformedAudio)
	}

	channels := make([][]float64, format.Channels)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode flac frame: %v: %w", err, audio.ErrMalformedAudio)
		}
		if len(frame.Subframes) != format.Channels {
			return nil, fmt.Errorf("flac frame has %d subframes, stream declares %d channels: %w", len(frame.Subframes), format.Channels, audio.ErrMalformedAudio)
		}

		for ch, sub := range frame.Subframes {
			for _, sample := range sub.Samples {
				channels[ch] = append(channels[ch], audio.SampleFromInt16(int16(sample)))
			}
		}
	}

	for ch := range channels {
		if channels[ch] == nil {
			channels[ch] = []float64{}
		}
	}

	return &audio.Buffer{Format: format, Data: channels}, nil
}
