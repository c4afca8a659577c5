// ABOUTME: Sentinel errors for the playback controller
// ABOUTME: Callers match these with errors.Is
package playback

import "errors"

var (
	// ErrNoBuffer is returned by Play and Restart when no audio buffer
	// has been loaded into the controller.
	ErrNoBuffer = errors.New("no audio buffer loaded")

	// ErrRateOutOfRange is returned by SetRate for values outside
	// [MinRate, MaxRate]. The controller never clamps silently.
	ErrRateOutOfRange = errors.New("playback rate out of range")

	// ErrPitchOutOfRange is returned by SetPitch for values outside
	// [MinPitchCents, MaxPitchCents].
	ErrPitchOutOfRange = errors.New("pitch offset out of range")
)
