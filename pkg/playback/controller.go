// ABOUTME: Playback controller state machine over buffer-time cursors
// ABOUTME: Drives device sessions, analyzer snapshots, and completion callbacks
package playback

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/intone-audio/intone-go/pkg/audio/analyze"
	"github.com/intone-audio/intone-go/pkg/audio/output"
	"github.com/intone-audio/intone-go/pkg/audio/transform"
)

// Playback bounds callers must stay inside. Out-of-range values are
// rejected, never clamped.
const (
	MinRate = 0.5
	MaxRate = 2.0

	MinPitchCents = -1200.0
	MaxPitchCents = 1200.0
)

// DefaultTickInterval paces progress checks and analyzer snapshots
const DefaultTickInterval = 50 * time.Millisecond

const snapshotQueue = 8

// State is the controller lifecycle state
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Config configures a Controller
type Config struct {
	// Device plays PCM streams (default: output.NewOto())
	Device output.Device

	// Clock supplies wall-clock time (default: time.Now)
	Clock func() time.Time

	// TickInterval paces the periodic progress and analyzer work
	// (default: DefaultTickInterval)
	TickInterval time.Duration

	// Analyzer produces spectrum snapshots while playing
	// (default: analyze.DefaultWindow)
	Analyzer *analyze.Analyzer

	// OnComplete fires once per activation on natural end of buffer,
	// never on explicit stop or pause
	OnComplete func()
}

// Controller tracks position in buffer time: the cursor holds buffer
// time consumed up to the last anchor, and while Playing the current
// position is cursor + (now - anchor) * rate. Progress never polls the
// audio device.
type Controller struct {
	mu sync.Mutex

	device     output.Device
	clock      func() time.Time
	tick       time.Duration
	analyzer   *analyze.Analyzer
	onComplete func()

	buf    *audio.Buffer
	state  State
	cursor time.Duration
	anchor time.Time
	rate   float64
	pitch  float64

	// gen invalidates periodic work from superseded activations
	gen     uint64
	source  *transform.Stretcher
	stream  *pcmStream
	session output.Session

	snapshots chan analyze.Snapshot
}

// New creates a stopped controller with rate 1.0 and pitch 0
func New(config Config) *Controller {
	if config.Device == nil {
		config.Device = output.NewOto()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.Analyzer == nil {
		config.Analyzer, _ = analyze.New(analyze.DefaultWindow)
	}

	return &Controller{
		device:     config.Device,
		clock:      config.Clock,
		tick:       config.TickInterval,
		analyzer:   config.Analyzer,
		onComplete: config.OnComplete,
		rate:       1.0,
		snapshots:  make(chan analyze.Snapshot, snapshotQueue),
	}
}

// SetBuffer installs a new buffer, fully stopping any prior session
// first so none of its pending callbacks can touch the new state.
// A nil buffer clears the controller.
func (c *Controller) SetBuffer(buf *audio.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.buf = buf
}

// Play starts or resumes playback from the current cursor.
// It is a no-op while already Playing.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Playing {
		return nil
	}
	if c.buf == nil {
		return ErrNoBuffer
	}
	return c.startLocked()
}

// Pause halts sound and folds the elapsed interval into the cursor.
// A cursor that would land past the end wraps to 0 rather than looping.
// It is a no-op unless Playing.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return nil
	}

	folded := c.cursor + c.scaledElapsedLocked()
	c.haltLocked()

	if folded > c.buf.Duration() || folded < 0 {
		folded = 0
	}
	c.cursor = folded
	c.state = Paused
	return nil
}

// Stop halts any active source and resets the cursor to 0. Stopping an
// already stopped controller is a no-op, not an error.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Restart stops and immediately plays again from offset 0
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buf == nil {
		return ErrNoBuffer
	}
	c.stopLocked()
	return c.startLocked()
}

// SetRate changes the time-stretch multiplier, valid in [MinRate,
// MaxRate]. While Playing the elapsed interval is folded into the
// cursor at the old rate and the anchor resets; elapsed math uses the
// rate sampled at each transition, not a time integral.
func (c *Controller) SetRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return fmt.Errorf("%w: %.2f not in [%.1f, %.1f]", ErrRateOutOfRange, rate, MinRate, MaxRate)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Playing {
		c.cursor = c.positionLocked()
		c.anchor = c.clock()
	}
	c.rate = rate
	if c.source != nil {
		c.source.SetParams(c.rate, transform.PitchRatio(c.pitch))
	}
	return nil
}

// SetPitch changes the pitch offset in cents, valid in [MinPitchCents,
// MaxPitchCents]. Pitch has no effect on position math.
func (c *Controller) SetPitch(cents float64) error {
	if cents < MinPitchCents || cents > MaxPitchCents {
		return fmt.Errorf("%w: %.0f not in [%.0f, %.0f]", ErrPitchOutOfRange, cents, MinPitchCents, MaxPitchCents)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pitch = cents
	if c.source != nil {
		c.source.SetParams(c.rate, transform.PitchRatio(c.pitch))
	}
	return nil
}

// Position returns the current buffer-time position, always within
// [0, buffer duration]
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rate returns the current rate multiplier
func (c *Controller) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Pitch returns the current pitch offset in cents
func (c *Controller) Pitch() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

// Buffer returns the currently loaded buffer, nil when cleared
func (c *Controller) Buffer() *audio.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}

// Snapshots returns the analyzer feed. Values arrive only while
// Playing; sends never block, so a slow consumer just misses frames.
func (c *Controller) Snapshots() <-chan analyze.Snapshot {
	return c.snapshots
}

// startLocked activates playback from the current cursor
func (c *Controller) startLocked() error {
	startFrame := int(c.cursor.Seconds() * float64(c.buf.Format.SampleRate))

	source := transform.NewStretcher(c.buf, startFrame, c.rate, transform.PitchRatio(c.pitch))
	stream := newPCMStream(source)

	session, err := c.device.Begin(c.buf.Format, stream)
	if err != nil {
		return fmt.Errorf("begin playback session: %w", err)
	}

	c.gen++
	c.source = source
	c.stream = stream
	c.session = session
	c.anchor = c.clock()
	c.state = Playing

	go c.run(c.gen)
	return nil
}

// stopLocked is the idempotent stop transition
func (c *Controller) stopLocked() {
	if c.state != Stopped {
		c.haltLocked()
	}
	c.state = Stopped
	c.cursor = 0
}

// haltLocked tears down the active source and invalidates all periodic
// work started under the current generation
func (c *Controller) haltLocked() {
	c.gen++

	if c.stream != nil {
		c.stream.Close()
	}
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			log.Printf("Close playback session: %v", err)
		}
	}
	c.source = nil
	c.stream = nil
	c.session = nil
}

// scaledElapsedLocked converts wall time since the anchor to buffer time
func (c *Controller) scaledElapsedLocked() time.Duration {
	return time.Duration(float64(c.clock().Sub(c.anchor)) * c.rate)
}

// positionLocked computes the cursor position clamped to the buffer
func (c *Controller) positionLocked() time.Duration {
	pos := c.cursor
	if c.state == Playing {
		pos += c.scaledElapsedLocked()
	}
	if pos < 0 {
		pos = 0
	}
	if c.buf != nil && pos > c.buf.Duration() {
		pos = c.buf.Duration()
	}
	return pos
}

// run drives one activation's periodic work until it is superseded
func (c *Controller) run(gen uint64) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for range ticker.C {
		if !c.step(gen) {
			return
		}
	}
}

// step performs one tick: completion detection and an analyzer
// snapshot. Returns false once this activation is no longer current.
func (c *Controller) step(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state != Playing {
		return false
	}

	pos := c.positionLocked()
	if pos >= c.buf.Duration() {
		c.haltLocked()
		c.state = Stopped
		c.cursor = 0
		if c.onComplete != nil {
			go c.onComplete()
		}
		return false
	}

	frame := int(pos.Seconds() * float64(c.buf.Format.SampleRate))
	snap := analyze.Snapshot{At: pos, Bins: c.analyzer.Snapshot(c.buf, frame)}
	select {
	case c.snapshots <- snap:
	default:
	}
	return true
}
