// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and normalized sample buffers
package audio

import "time"

// Format describes a PCM audio stream format
type Format struct {
	SampleRate int
	Channels   int
}

// Valid reports whether the format has a usable rate and channel count
func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}

// Buffer holds decoded audio as normalized float samples in [-1.0, 1.0],
// one slice per channel (channel-major). All channel slices have equal length.
// A Buffer is immutable once built; playback and analysis only read it.
type Buffer struct {
	Format Format
	Data   [][]float64
}

// NewBuffer allocates a zeroed buffer with the given frame count
func NewBuffer(format Format, frames int) *Buffer {
	data := make([][]float64, format.Channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	return &Buffer{Format: format, Data: data}
}

// Frames returns the per-channel sample count
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the playback length at the buffer's sample rate
func (b *Buffer) Duration() time.Duration {
	if b.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.Format.SampleRate) * float64(time.Second))
}

// SampleFromInt16 maps a signed 16-bit PCM value to a normalized float.
// Divides by 32768, so +32767 maps to 0.999969... rather than 1.0.
func SampleFromInt16(v int16) float64 {
	return float64(v) / 32768.0
}

// SampleToInt16 quantizes a normalized float to signed 16-bit PCM.
// Clamps to [-1.0, 1.0], then scales negatives by 32768 and non-negatives
// by 32767, truncating toward zero. The asymmetric scaling covers the full
// signed 16-bit range without overflow.
func SampleToInt16(v float64) int16 {
	if v > 1.0 {
		v = 1.0
	}
	if v < -1.0 {
		v = -1.0
	}
	if v < 0 {
		return int16(v * 32768.0)
	}
	return int16(v * 32767.0)
}
