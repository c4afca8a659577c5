// ABOUTME: Audio output package for playing PCM streams on real devices
// ABOUTME: Provides Device/Session interfaces with oto and malgo backends
// Package output sends 16-bit PCM streams to the platform audio device.
//
// A Device opens playback Sessions. Each session pulls interleaved
// little-endian PCM from an io.Reader until the reader is exhausted or
// the session is closed. Two backends are provided:
//
//   - NewOto: shares one process-wide oto context across sessions,
//     adapting sample rate and channel count to the first format opened
//   - NewMalgo: one miniaudio device per session via malgo
//
// Example:
//
//	dev := output.NewOto()
//	session, err := dev.Begin(audio.Format{SampleRate: 48000, Channels: 2}, pcm)
//	defer session.Close()
package output
