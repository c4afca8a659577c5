// ABOUTME: YAML configuration with environment overrides and validation
// ABOUTME: Defaults favor the offline mock voice and the oto backend
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/intone-audio/intone-go/pkg/playback"
	"gopkg.in/yaml.v3"
)

type SynthesisConfig struct {
	Mode       string `yaml:"mode"` // mock, http, stream
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate"`
}

type OutputConfig struct {
	Backend string `yaml:"backend"` // oto, malgo
}

type AnalyzerConfig struct {
	Window int `yaml:"window"`
	TickMS int `yaml:"tick_ms"`
}

type HistoryConfig struct {
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type PlaybackConfig struct {
	Rate       float64 `yaml:"rate"`
	PitchCents float64 `yaml:"pitch_cents"`
}

type Config struct {
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Output    OutputConfig    `yaml:"output"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	History   HistoryConfig   `yaml:"history"`
	Export    ExportConfig    `yaml:"export"`
	Playback  PlaybackConfig  `yaml:"playback"`
}

// Default returns the configuration used when no file or overrides are
// present: offline mock voice, oto output, history under the user's
// data directory.
func Default() Config {
	return Config{
		Synthesis: SynthesisConfig{
			Mode:       "mock",
			Voice:      "default",
			SampleRate: 24000,
		},
		Output: OutputConfig{
			Backend: "oto",
		},
		Analyzer: AnalyzerConfig{
			Window: 1024,
			TickMS: 50,
		},
		History: HistoryConfig{
			Path:       defaultHistoryPath(),
			MaxEntries: 200,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Playback: PlaybackConfig{
			Rate:       1.0,
			PitchCents: 0,
		},
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "intone-history.db"
	}
	return filepath.Join(home, ".local", "share", "intone", "history.db")
}

// Load reads an optional YAML file, applies INTONE_* environment
// overrides, and validates the result. An empty path loads defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Synthesis.Mode, "INTONE_SYNTHESIS_MODE")
	overrideString(&cfg.Synthesis.Endpoint, "INTONE_SYNTHESIS_ENDPOINT")
	overrideString(&cfg.Synthesis.APIKey, "INTONE_SYNTHESIS_API_KEY")
	overrideString(&cfg.Synthesis.Voice, "INTONE_SYNTHESIS_VOICE")
	overrideInt(&cfg.Synthesis.SampleRate, "INTONE_SYNTHESIS_SAMPLE_RATE")
	overrideString(&cfg.Output.Backend, "INTONE_OUTPUT_BACKEND")
	overrideInt(&cfg.Analyzer.Window, "INTONE_ANALYZER_WINDOW")
	overrideInt(&cfg.Analyzer.TickMS, "INTONE_ANALYZER_TICK_MS")
	overrideString(&cfg.History.Path, "INTONE_HISTORY_PATH")
	overrideInt(&cfg.History.MaxEntries, "INTONE_HISTORY_MAX_ENTRIES")
	overrideString(&cfg.Export.Dir, "INTONE_EXPORT_DIR")
	overrideFloat(&cfg.Playback.Rate, "INTONE_PLAYBACK_RATE")
	overrideFloat(&cfg.Playback.PitchCents, "INTONE_PLAYBACK_PITCH_CENTS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	switch cfg.Synthesis.Mode {
	case "mock":
	case "http", "stream":
		if cfg.Synthesis.Endpoint == "" {
			return fmt.Errorf("synthesis.endpoint is required for mode %q", cfg.Synthesis.Mode)
		}
	default:
		return fmt.Errorf("synthesis.mode must be mock, http, or stream, got %q", cfg.Synthesis.Mode)
	}
	if cfg.Synthesis.SampleRate <= 0 {
		return errors.New("synthesis.sample_rate must be positive")
	}

	switch cfg.Output.Backend {
	case "oto", "malgo":
	default:
		return fmt.Errorf("output.backend must be oto or malgo, got %q", cfg.Output.Backend)
	}

	if w := cfg.Analyzer.Window; w <= 0 || w&(w-1) != 0 {
		return fmt.Errorf("analyzer.window must be a positive power of two, got %d", w)
	}
	if cfg.Analyzer.TickMS <= 0 {
		return errors.New("analyzer.tick_ms must be positive")
	}

	if cfg.History.Path == "" {
		return errors.New("history.path must not be empty")
	}
	if cfg.History.MaxEntries < 0 {
		return errors.New("history.max_entries must not be negative")
	}

	if r := cfg.Playback.Rate; r < playback.MinRate || r > playback.MaxRate {
		return fmt.Errorf("playback.rate must be within [%.1f, %.1f], got %g",
			playback.MinRate, playback.MaxRate, r)
	}
	if p := cfg.Playback.PitchCents; p < playback.MinPitchCents || p > playback.MaxPitchCents {
		return fmt.Errorf("playback.pitch_cents must be within [%.0f, %.0f], got %g",
			playback.MinPitchCents, playback.MaxPitchCents, p)
	}

	return nil
}
