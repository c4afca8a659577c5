// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts PCM byte streams between sample rates
// Package resample provides streaming sample rate conversion.
//
// Reader wraps a 16-bit interleaved PCM stream and converts it to a
// different rate with linear interpolation. Handles both upsampling
// and downsampling; a matching rate passes through untouched.
//
// Example:
//
//	r, err := resample.NewReader(src, 24000, 48000, 1)
//	n, err := r.Read(out)
package resample
