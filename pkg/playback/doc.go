// ABOUTME: High-level playback controller API
// ABOUTME: State machine with buffer-time cursor, rate/pitch, and analyzer feed
// Package playback plays decoded audio buffers through an output device.
//
// The Controller is a small state machine (Stopped, Playing, Paused)
// over an immutable audio.Buffer:
//   - position is tracked in buffer time from a wall-clock anchor,
//     never by polling the audio device
//   - rate (time-stretch) and pitch (frequency shift) apply at playback
//     time and are independently adjustable while playing
//   - each activation carries a generation token, so callbacks from a
//     superseded session can never act on the current one
//
// Example:
//
//	ctrl := playback.New(playback.Config{
//	    OnComplete: func() { log.Println("done") },
//	})
//	ctrl.SetBuffer(buf)
//	err := ctrl.Play()
//	err = ctrl.SetRate(1.5)
//	ctrl.Stop()
package playback
