// ABOUTME: Spectral analyzer producing magnitude snapshots
// ABOUTME: Windows buffer frames with Hann and runs a real FFT
package analyze

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/mjibson/go-dsp/fft"
)

// DefaultWindow is the analysis window in frames
const DefaultWindow = 1024

// Snapshot is one spectral frame taken at a buffer-time position
type Snapshot struct {
	At   time.Duration
	Bins []float64
}

// Analyzer computes magnitude spectra over a fixed window
type Analyzer struct {
	window int
	hann   []float64
}

// New creates an analyzer with the given window size.
// The window must be a positive power of two.
func New(window int) (*Analyzer, error) {
	if window <= 0 || window&(window-1) != 0 {
		return nil, fmt.Errorf("analysis window must be a positive power of two, got %d", window)
	}

	hann := make([]float64, window)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(window))
	}

	return &Analyzer{window: window, hann: hann}, nil
}

// Window returns the analysis window in frames
func (a *Analyzer) Window() int {
	return a.window
}

// Bins returns the number of magnitude bins per snapshot
func (a *Analyzer) Bins() int {
	return a.window / 2
}

// Snapshot computes the magnitude spectrum of one window starting at
// the given frame. Channels are averaged to mono before windowing.
// Frames past the end of the buffer read as silence, so a snapshot
// near the tail shrinks toward zero instead of failing.
func (a *Analyzer) Snapshot(buf *audio.Buffer, frame int) []float64 {
	mono := make([]float64, a.window)

	if buf != nil && len(buf.Data) > 0 {
		frames := buf.Frames()
		channels := float64(len(buf.Data))
		if frame < 0 {
			frame = 0
		}
		for i := 0; i < a.window; i++ {
			pos := frame + i
			if pos >= frames {
				break
			}
			sum := 0.0
			for ch := range buf.Data {
				sum += buf.Data[ch][pos]
			}
			mono[i] = (sum / channels) * a.hann[i]
		}
	}

	spectrum := fft.FFTReal(mono)

	magnitudes := make([]float64, a.window/2)
	for i := range magnitudes {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	return magnitudes
}
