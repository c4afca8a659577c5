// ABOUTME: Configuration loading tests covering file, env, and validation
// ABOUTME: Uses t.Setenv for overrides and t.TempDir for config files
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Synthesis.Mode != "mock" {
		t.Errorf("default synthesis mode = %q, want mock", cfg.Synthesis.Mode)
	}
	if cfg.Synthesis.SampleRate != 24000 {
		t.Errorf("default sample rate = %d, want 24000", cfg.Synthesis.SampleRate)
	}
	if cfg.Output.Backend != "oto" {
		t.Errorf("default backend = %q, want oto", cfg.Output.Backend)
	}
	if cfg.Analyzer.Window != 1024 || cfg.Analyzer.TickMS != 50 {
		t.Errorf("default analyzer = %d/%dms, want 1024/50ms", cfg.Analyzer.Window, cfg.Analyzer.TickMS)
	}
	if cfg.History.MaxEntries != 200 {
		t.Errorf("default history cap = %d, want 200", cfg.History.MaxEntries)
	}
	if !strings.HasSuffix(cfg.History.Path, "history.db") {
		t.Errorf("default history path = %q, want a history.db file", cfg.History.Path)
	}
	if cfg.Playback.Rate != 1.0 || cfg.Playback.PitchCents != 0 {
		t.Errorf("default playback = %g/%g, want 1.0/0", cfg.Playback.Rate, cfg.Playback.PitchCents)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intone.yaml")
	data := `
synthesis:
  mode: http
  endpoint: http://localhost:9090/speak
  voice: tenor
  sample_rate: 22050
output:
  backend: malgo
analyzer:
  window: 512
history:
  max_entries: 10
playback:
  rate: 1.5
  pitch_cents: -200
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Synthesis.Mode != "http" || cfg.Synthesis.Endpoint != "http://localhost:9090/speak" {
		t.Errorf("synthesis = %q/%q", cfg.Synthesis.Mode, cfg.Synthesis.Endpoint)
	}
	if cfg.Synthesis.Voice != "tenor" || cfg.Synthesis.SampleRate != 22050 {
		t.Errorf("voice/rate = %q/%d", cfg.Synthesis.Voice, cfg.Synthesis.SampleRate)
	}
	if cfg.Output.Backend != "malgo" {
		t.Errorf("backend = %q, want malgo", cfg.Output.Backend)
	}
	if cfg.Analyzer.Window != 512 {
		t.Errorf("window = %d, want 512", cfg.Analyzer.Window)
	}
	if cfg.Analyzer.TickMS != 50 {
		t.Errorf("tick = %d, want default 50", cfg.Analyzer.TickMS)
	}
	if cfg.History.MaxEntries != 10 {
		t.Errorf("history cap = %d, want 10", cfg.History.MaxEntries)
	}
	if cfg.Playback.Rate != 1.5 || cfg.Playback.PitchCents != -200 {
		t.Errorf("playback = %g/%g, want 1.5/-200", cfg.Playback.Rate, cfg.Playback.PitchCents)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INTONE_SYNTHESIS_MODE", "stream")
	t.Setenv("INTONE_SYNTHESIS_ENDPOINT", "ws://localhost:7700")
	t.Setenv("INTONE_SYNTHESIS_API_KEY", "sekret")
	t.Setenv("INTONE_SYNTHESIS_VOICE", "bass")
	t.Setenv("INTONE_OUTPUT_BACKEND", "malgo")
	t.Setenv("INTONE_ANALYZER_WINDOW", "256")
	t.Setenv("INTONE_HISTORY_PATH", "./tmp-history.db")
	t.Setenv("INTONE_HISTORY_MAX_ENTRIES", "17")
	t.Setenv("INTONE_PLAYBACK_RATE", "0.75")
	t.Setenv("INTONE_PLAYBACK_PITCH_CENTS", "450")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Synthesis.Mode != "stream" || cfg.Synthesis.Endpoint != "ws://localhost:7700" {
		t.Errorf("synthesis override = %q/%q", cfg.Synthesis.Mode, cfg.Synthesis.Endpoint)
	}
	if cfg.Synthesis.APIKey != "sekret" || cfg.Synthesis.Voice != "bass" {
		t.Errorf("key/voice override = %q/%q", cfg.Synthesis.APIKey, cfg.Synthesis.Voice)
	}
	if cfg.Output.Backend != "malgo" {
		t.Errorf("backend override = %q", cfg.Output.Backend)
	}
	if cfg.Analyzer.Window != 256 {
		t.Errorf("window override = %d", cfg.Analyzer.Window)
	}
	if cfg.History.Path != "./tmp-history.db" || cfg.History.MaxEntries != 17 {
		t.Errorf("history override = %q/%d", cfg.History.Path, cfg.History.MaxEntries)
	}
	if cfg.Playback.Rate != 0.75 || cfg.Playback.PitchCents != 450 {
		t.Errorf("playback override = %g/%g", cfg.Playback.Rate, cfg.Playback.PitchCents)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown mode", map[string]string{"INTONE_SYNTHESIS_MODE": "carrier-pigeon"}},
		{"http without endpoint", map[string]string{"INTONE_SYNTHESIS_MODE": "http"}},
		{"unknown backend", map[string]string{"INTONE_OUTPUT_BACKEND": "speakers"}},
		{"window not power of two", map[string]string{"INTONE_ANALYZER_WINDOW": "1000"}},
		{"rate too fast", map[string]string{"INTONE_PLAYBACK_RATE": "2.5"}},
		{"rate too slow", map[string]string{"INTONE_PLAYBACK_RATE": "0.25"}},
		{"pitch out of range", map[string]string{"INTONE_PLAYBACK_PITCH_CENTS": "2400"}},
		{"negative history cap", map[string]string{"INTONE_HISTORY_MAX_ENTRIES": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
