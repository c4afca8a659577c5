// ABOUTME: Headless one-shot CLI: synthesize text, then play and/or save it
// ABOUTME: Exits 0 on success, 1 on synthesis/decode failure, 2 when playback is unavailable
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/intone-audio/intone-go/internal/config"
	"github.com/intone-audio/intone-go/internal/synth"
	"github.com/intone-audio/intone-go/pkg/audio"
	"github.com/intone-audio/intone-go/pkg/audio/decode"
	"github.com/intone-audio/intone-go/pkg/audio/output"
	"github.com/intone-audio/intone-go/pkg/audio/wav"
	"github.com/intone-audio/intone-go/pkg/playback"
)

const (
	exitSynthesisFailed     = 1
	exitPlaybackUnavailable = 2
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	voice      = flag.String("voice", "", "Voice name (overrides config)")
	endpoint   = flag.String("endpoint", "", "Synthesis endpoint (overrides config)")
	rate       = flag.Float64("rate", 1.0, "Playback rate in [0.5, 2.0]")
	pitch      = flag.Float64("pitch", 0, "Pitch offset in cents, [-1200, 1200]")
	out        = flag.String("out", "", "Write the WAV to this path")
	play       = flag.Bool("play", true, "Play the utterance aloud")
	quiet      = flag.Bool("quiet", false, "Suppress progress logging")
)

func main() {
	flag.Parse()

	if *quiet {
		log.SetOutput(io.Discard)
	}

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "usage: intone-say [flags] text to speak")
		flag.PrintDefaults()
		os.Exit(exitSynthesisFailed)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(exitSynthesisFailed, "config: %v", err)
	}
	if *voice != "" {
		cfg.Synthesis.Voice = *voice
	}
	if *endpoint != "" {
		cfg.Synthesis.Endpoint = *endpoint
		if cfg.Synthesis.Mode == "mock" {
			cfg.Synthesis.Mode = "http"
		}
	}

	buf, err := synthesize(cfg, text)
	if err != nil {
		fail(exitSynthesisFailed, "synthesize: %v", err)
	}
	log.Printf("Synthesized %.2fs of audio", buf.Duration().Seconds())

	if *out != "" {
		var b bytes.Buffer
		if err := wav.Encode(&b, buf); err != nil {
			fail(exitSynthesisFailed, "encode: %v", err)
		}
		if err := os.WriteFile(*out, b.Bytes(), 0o644); err != nil {
			fail(exitSynthesisFailed, "write %s: %v", *out, err)
		}
		log.Printf("Wrote %s (%d bytes)", *out, b.Len())
	}

	if *play {
		if err := playBuffer(cfg, buf); err != nil {
			if errors.Is(err, output.ErrPlaybackUnavailable) {
				fail(exitPlaybackUnavailable, "playback: %v", err)
			}
			fail(exitSynthesisFailed, "playback: %v", err)
		}
	}
}

// synthesize runs the configured backend and decodes its PCM output
func synthesize(cfg config.Config, text string) (*audio.Buffer, error) {
	var synthesizer synth.Synthesizer
	var err error
	switch cfg.Synthesis.Mode {
	case "http":
		synthesizer, err = synth.NewHTTP(synth.HTTPConfig{
			Endpoint:   cfg.Synthesis.Endpoint,
			APIKey:     cfg.Synthesis.APIKey,
			SampleRate: cfg.Synthesis.SampleRate,
		})
	case "stream":
		synthesizer, err = synth.NewStream(synth.StreamConfig{
			Endpoint:   cfg.Synthesis.Endpoint,
			APIKey:     cfg.Synthesis.APIKey,
			SampleRate: cfg.Synthesis.SampleRate,
		})
	default:
		synthesizer = synth.NewMock()
	}
	if err != nil {
		return nil, err
	}

	result, err := synthesizer.Synthesize(context.Background(), synth.Request{
		Text:  text,
		Voice: cfg.Synthesis.Voice,
	})
	if err != nil {
		return nil, err
	}

	decoder, err := decode.NewPCM16(result.Format)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(result.PCM)
}

// playBuffer plays the whole buffer and waits for natural completion
func playBuffer(cfg config.Config, buf *audio.Buffer) error {
	var device output.Device
	if cfg.Output.Backend == "malgo" {
		device = output.NewMalgo()
	} else {
		device = output.NewOto()
	}

	done := make(chan struct{})
	controller := playback.New(playback.Config{
		Device:     device,
		OnComplete: func() { close(done) },
	})

	if err := controller.SetRate(*rate); err != nil {
		return err
	}
	if err := controller.SetPitch(*pitch); err != nil {
		return err
	}

	controller.SetBuffer(buf)
	if err := controller.Play(); err != nil {
		return err
	}

	// Completion takes longer than the buffer duration when slowed down
	limit := time.Duration(float64(buf.Duration())/controller.Rate()) + 5*time.Second
	select {
	case <-done:
	case <-time.After(limit):
		controller.Stop()
		return errors.New("playback did not complete in time")
	}
	return nil
}

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
