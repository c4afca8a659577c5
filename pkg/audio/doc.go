// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample mapping functions
// Package audio provides fundamental audio types and utilities for speech playback.
//
// This package defines core types used throughout the intone library:
//   - Format: Describes a PCM stream format (sample rate, channels)
//   - Buffer: Decoded audio as channel-major normalized floats in [-1.0, 1.0]
//
// It also provides the 16-bit sample mapping used at every PCM boundary:
//   - SampleFromInt16 divides by 32768, so +32767 maps just under 1.0
//   - SampleToInt16 clamps and scales asymmetrically (32768 for negatives,
//     32767 for non-negatives), truncating toward zero
//
// Example:
//
//	format := audio.Format{
//	    SampleRate: 24000,
//	    Channels:   1,
//	}
//
//	buf := audio.NewBuffer(format, 24000)
//	fmt.Println(buf.Duration()) // 1s
package audio
