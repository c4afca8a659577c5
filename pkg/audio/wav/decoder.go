// ABOUTME: WAV decoder for 16-bit PCM
// ABOUTME: Walks RIFF chunks, validates the format chunk, and de-quantizes frames
package wav

import (
	"encoding/binary"
	"fmt"

	"github.com/intone-audio/intone-go/pkg/audio"
)

// Decode parses a WAV byte stream into a normalized sample buffer.
// Only 16-bit PCM (format code 1) is accepted; other codecs or bit
// depths return audio.ErrUnsupportedFormat. Structural problems such
// as truncated chunks return audio.ErrMalformedAudio.
//
// Chunk order is not assumed beyond fmt preceding data; unknown chunks
// are skipped, including their odd-length padding byte.
func Decode(data []byte) (*audio.Buffer, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("truncated RIFF header (%d bytes): %w", len(data), audio.ErrMalformedAudio)
	}
	if string(data[0:4]) != "RIFF" {
		return nil, fmt.Errorf("missing RIFF tag: %w", audio.ErrMalformedAudio)
	}
	if string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("missing WAVE tag: %w", audio.ErrMalformedAudio)
	}

	var format audio.Format
	haveFmt := false

	pos := 12
	for pos < len(data) {
		if len(data)-pos < 8 {
			return nil, fmt.Errorf("truncated chunk header at offset %d: %w", pos, audio.ErrMalformedAudio)
		}

		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8

		if chunkSize < 0 || chunkSize > len(data)-pos {
			return nil, fmt.Errorf("chunk %q claims %d bytes but only %d remain: %w", chunkID, chunkSize, len(data)-pos, audio.ErrMalformedAudio)
		}

		switch chunkID {
		case "fmt ":
			f, err := parseFmtChunk(data[pos : pos+chunkSize])
			if err != nil {
				return nil, err
			}
			format = f
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk: %w", audio.ErrMalformedAudio)
			}
			return decodeData(data[pos:pos+chunkSize], format)
		}

		pos += chunkSize
		if chunkSize%2 == 1 {
			// RIFF chunks are word-aligned
			pos++
		}
	}

	return nil, fmt.Errorf("missing data chunk: %w", audio.ErrMalformedAudio)
}

// parseFmtChunk validates the format chunk and extracts rate and channels
func parseFmtChunk(chunk []byte) (audio.Format, error) {
	if len(chunk) < 16 {
		return audio.Format{}, fmt.Errorf("fmt chunk too short (%d bytes): %w", len(chunk), audio.ErrMalformedAudio)
	}

	formatCode := binary.LittleEndian.Uint16(chunk[0:2])
	channels := int(binary.LittleEndian.Uint16(chunk[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(chunk[4:8]))
	bits := binary.LittleEndian.Uint16(chunk[14:16])

	if formatCode != formatPCM {
		return audio.Format{}, fmt.Errorf("format code %d is not PCM: %w", formatCode, audio.ErrUnsupportedFormat)
	}
	if channels == 0 {
		return audio.Format{}, fmt.Errorf("fmt chunk declares zero channels: %w", audio.ErrMalformedAudio)
	}
	if sampleRate == 0 {
		return audio.Format{}, fmt.Errorf("fmt chunk declares zero sample rate: %w", audio.ErrMalformedAudio)
	}
	if bits != bitsPerSample {
		return audio.Format{}, fmt.Errorf("bit depth %d (supported: 16): %w", bits, audio.ErrUnsupportedFormat)
	}

	return audio.Format{SampleRate: sampleRate, Channels: channels}, nil
}

// decodeData de-interleaves 16-bit little-endian frames into a buffer
func decodeData(chunk []byte, format audio.Format) (*audio.Buffer, error) {
	frameSize := format.Channels * 2
	if len(chunk)%frameSize != 0 {
		return nil, fmt.Errorf("data size %d is not a whole number of %d-byte frames: %w", len(chunk), frameSize, audio.ErrMalformedAudio)
	}

	frames := len(chunk) / frameSize
	buf := audio.NewBuffer(format, frames)

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < format.Channels; ch++ {
			offset := (frame*format.Channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(chunk[offset:]))
			buf.Data[ch][frame] = audio.SampleFromInt16(sample)
		}
	}

	return buf, nil
}
