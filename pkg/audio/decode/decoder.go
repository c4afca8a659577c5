// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders
package decode

import "github.com/intone-audio/intone-go/pkg/audio"

// Decoder decodes encoded audio bytes into a normalized sample buffer
type Decoder interface {
	// Decode converts encoded audio data to a sample buffer
	Decode(data []byte) (*audio.Buffer, error)
}
