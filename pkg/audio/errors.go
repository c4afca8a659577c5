// ABOUTME: Sentinel errors for audio decoding and encoding
// ABOUTME: Callers match these with errors.Is after unwrapping
package audio

import "errors"

var (
	// ErrMalformedAudio indicates input bytes that cannot be parsed as
	// the claimed format (truncated data, impossible field values).
	ErrMalformedAudio = errors.New("malformed audio data")

	// ErrUnsupportedFormat indicates well-formed input in a format or
	// encoding variant this library does not handle.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
