// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for PCM, MP3, FLAC
// Package decode provides audio decoders for the formats intone accepts.
//
// Supports: raw PCM (16-bit little-endian), MP3, FLAC
//
// All decoders implement the Decoder interface and output channel-major
// normalized sample buffers in [-1.0, 1.0). File routes a path to the
// right decoder by extension, including WAV through the wav package.
//
// Example:
//
//	dec, err := decode.NewPCM16(audio.Format{SampleRate: 24000, Channels: 1})
//	buf, err := dec.Decode(pcmBytes)
package decode
