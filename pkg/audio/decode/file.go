// ABOUTME: File decoding with extension dispatch
// ABOUTME: Routes .wav, .mp3, and .flac files to the matching decoder
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/intone-audio/intone-go/pkg/audio/wav"
)

// File reads and decodes an audio file based on its extension
func File(path string) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(data)
	case ".mp3":
		return NewMP3().Decode(data)
	case ".flac":
		return NewFLAC().Decode(data)
	default:
		return nil, fmt.Errorf("file extension %q: %w", filepath.Ext(path), audio.ErrUnsupportedFormat)
	}
}
