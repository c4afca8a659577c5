// ABOUTME: Main application orchestration for the Intone player
// ABOUTME: Coordinates synthesis, decoding, playback, history, and export
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intone-audio/intone-go/internal/config"
	"github.com/intone-audio/intone-go/internal/history"
	"github.com/intone-audio/intone-go/internal/synth"
	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/intone-audio/intone-go/pkg/audio/analyze"
	"github.com/intone-audio/intone-go/pkg/audio/decode"
	"github.com/intone-audio/intone-go/pkg/audio/output"
	"github.com/intone-audio/intone-go/pkg/audio/wav"
	"github.com/intone-audio/intone-go/pkg/playback"
)

// ErrNothingLoaded is returned by Save and Export before any
// utterance has been synthesized or replayed.
var ErrNothingLoaded = errors.New("no utterance loaded")

// Config holds application configuration. Synthesizer, Device, and
// Store default from Settings when nil; tests inject fakes here.
type Config struct {
	Settings config.Config

	Synthesizer synth.Synthesizer
	Device      output.Device
	Store       *history.Store

	// OnComplete is forwarded to the playback controller
	OnComplete func()
}

// utterance is the currently loaded audio and its provenance. The WAV
// bytes are encoded on the first save or export and reused afterwards;
// they always hold the original buffer, never rate or pitch effects.
type utterance struct {
	text    string
	voice   string
	buffer  *audio.Buffer
	wavData []byte
	savedID string
}

// App wires the synthesis boundary to the playback controller and the
// utterance history. One App owns at most one loaded utterance at a
// time; loading a new one fully stops the previous session first.
type App struct {
	settings   config.Config
	synth      synth.Synthesizer
	controller *playback.Controller
	store      *history.Store

	mu      sync.Mutex
	current *utterance
}

// New creates the application from configuration
func New(cfg Config) (*App, error) {
	synthesizer := cfg.Synthesizer
	if synthesizer == nil {
		s, err := newSynthesizer(cfg.Settings.Synthesis)
		if err != nil {
			return nil, fmt.Errorf("create synthesizer: %w", err)
		}
		synthesizer = s
	}

	device := cfg.Device
	if device == nil {
		device = newDevice(cfg.Settings.Output)
	}

	analyzer, err := analyze.New(cfg.Settings.Analyzer.Window)
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}

	store := cfg.Store
	if store == nil {
		s, err := history.Open(context.Background(), cfg.Settings.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		store = s
	}

	controller := playback.New(playback.Config{
		Device:       device,
		Analyzer:     analyzer,
		TickInterval: time.Duration(cfg.Settings.Analyzer.TickMS) * time.Millisecond,
		OnComplete:   cfg.OnComplete,
	})

	if err := controller.SetRate(cfg.Settings.Playback.Rate); err != nil {
		return nil, err
	}
	if err := controller.SetPitch(cfg.Settings.Playback.PitchCents); err != nil {
		return nil, err
	}

	return &App{
		settings:   cfg.Settings,
		synth:      synthesizer,
		controller: controller,
		store:      store,
	}, nil
}

// newSynthesizer picks the backend named by the synthesis config
func newSynthesizer(cfg config.SynthesisConfig) (synth.Synthesizer, error) {
	switch cfg.Mode {
	case "http":
		return synth.NewHTTP(synth.HTTPConfig{
			Endpoint:   cfg.Endpoint,
			APIKey:     cfg.APIKey,
			SampleRate: cfg.SampleRate,
		})
	case "stream":
		return synth.NewStream(synth.StreamConfig{
			Endpoint:   cfg.Endpoint,
			APIKey:     cfg.APIKey,
			SampleRate: cfg.SampleRate,
		})
	default:
		return synth.NewMock(), nil
	}
}

// newDevice picks the output backend named by the output config
func newDevice(cfg config.OutputConfig) output.Device {
	if cfg.Backend == "malgo" {
		return output.NewMalgo()
	}
	return output.NewOto()
}

// Controller exposes the playback controller for transport and the
// analyzer snapshot feed
func (a *App) Controller() *playback.Controller {
	return a.controller
}

// History exposes the utterance store for listing and deletion
func (a *App) History() *history.Store {
	return a.store
}

// Voice returns the configured synthesis voice
func (a *App) Voice() string {
	return a.settings.Synthesis.Voice
}

// Speak synthesizes text, installs the decoded buffer, and starts
// playback from the beginning
func (a *App) Speak(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("nothing to speak")
	}

	voice := a.settings.Synthesis.Voice
	result, err := a.synth.Synthesize(ctx, synth.Request{Text: text, Voice: voice})
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	decoder, err := decode.NewPCM16(result.Format)
	if err != nil {
		return err
	}
	buf, err := decoder.Decode(result.PCM)
	if err != nil {
		return fmt.Errorf("decode synthesis output: %w", err)
	}

	log.Printf("Synthesized %q: %d frames at %dHz", text, buf.Frames(), buf.Format.SampleRate)

	a.mu.Lock()
	a.current = &utterance{text: text, voice: voice, buffer: buf}
	a.mu.Unlock()

	a.controller.SetBuffer(buf)
	return a.controller.Play()
}

// Replay loads a stored utterance, restores its rate and pitch
// settings, and plays it from offset 0
func (a *App) Replay(ctx context.Context, id string) error {
	entry, err := a.store.Get(ctx, id)
	if err != nil {
		return err
	}

	buf, err := wav.Decode(entry.WAV)
	if err != nil {
		return fmt.Errorf("decode stored utterance %s: %w", id, err)
	}

	a.mu.Lock()
	a.current = &utterance{
		text:    entry.Text,
		voice:   entry.Voice,
		buffer:  buf,
		wavData: entry.WAV,
		savedID: entry.ID,
	}
	a.mu.Unlock()

	a.controller.SetBuffer(buf)
	if err := a.controller.SetRate(entry.Rate); err != nil {
		return err
	}
	if err := a.controller.SetPitch(entry.PitchCents); err != nil {
		return err
	}

	log.Printf("Replaying utterance %s (%q)", entry.ID, entry.Text)
	return a.controller.Play()
}

// Save stores the current utterance in history. The WAV bytes are
// encoded on first call and reused afterwards; saving the same
// utterance twice returns the existing entry instead of duplicating it.
func (a *App) Save(ctx context.Context) (*history.Entry, error) {
	a.mu.Lock()
	cur := a.current
	a.mu.Unlock()

	if cur == nil {
		return nil, ErrNothingLoaded
	}
	if cur.savedID != "" {
		return a.store.Get(ctx, cur.savedID)
	}

	data, err := a.encodeCurrent(cur)
	if err != nil {
		return nil, err
	}

	entry, err := a.store.Add(ctx, history.Entry{
		Text:       cur.text,
		Voice:      cur.voice,
		Rate:       a.controller.Rate(),
		PitchCents: a.controller.Pitch(),
		Duration:   cur.buffer.Duration().Seconds(),
		WAV:        data,
	})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	cur.savedID = entry.ID
	a.mu.Unlock()

	if err := a.store.Prune(ctx, a.settings.History.MaxEntries); err != nil {
		log.Printf("Prune history: %v", err)
	}

	log.Printf("Saved utterance %s (%.2fs)", entry.ID, entry.Duration)
	return entry, nil
}

// Export writes the current utterance's WAV bytes into dir under a
// generated name and returns the full path. The file always contains
// the original buffer; playback effects are never baked in.
func (a *App) Export(dir string) (string, error) {
	a.mu.Lock()
	cur := a.current
	a.mu.Unlock()

	if cur == nil {
		return "", ErrNothingLoaded
	}

	data, err := a.encodeCurrent(cur)
	if err != nil {
		return "", err
	}

	id := cur.savedID
	if id == "" {
		id = uuid.New().String()
	}
	name := fmt.Sprintf("intone-%s-%s.wav", time.Now().UTC().Format("20060102-150405"), id[:8])
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	log.Printf("Exported %s (%d bytes)", path, len(data))
	return path, nil
}

// encodeCurrent lazily encodes the loaded buffer as WAV, once
func (a *App) encodeCurrent(cur *utterance) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cur.wavData == nil {
		var b bytes.Buffer
		if err := wav.Encode(&b, cur.buffer); err != nil {
			return nil, fmt.Errorf("encode utterance: %w", err)
		}
		cur.wavData = b.Bytes()
	}
	return cur.wavData, nil
}

// Close stops playback and releases the history store
func (a *App) Close() error {
	a.controller.Stop()
	return a.store.Close()
}
