// ABOUTME: Entry point for the Intone text-to-speech player
// ABOUTME: Parses CLI flags and starts the interactive TUI application
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/intone-audio/intone-go/internal/app"
	"github.com/intone-audio/intone-go/internal/config"
	"github.com/intone-audio/intone-go/internal/discovery"
	"github.com/intone-audio/intone-go/internal/ui"
	"github.com/intone-audio/intone-go/internal/version"
	"github.com/intone-audio/intone-go/pkg/playback"
)

var (
	configPath  = flag.String("config", "", "Path to YAML config file")
	endpoint    = flag.String("endpoint", "", "Synthesis endpoint (overrides config)")
	voice       = flag.String("voice", "", "Voice name (overrides config)")
	discover    = flag.Bool("discover", false, "Find a synthesis server via mDNS")
	text        = flag.String("text", "", "Speak this text on startup")
	logFile     = flag.String("log-file", "intone.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, speak -text once and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

const (
	rateStep  = 0.1
	pitchStep = 100.0
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
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

	if *discover {
		log.Printf("Browsing for synthesis servers...")
		server, err := discovery.FirstServer(10 * time.Second)
		if err != nil {
			log.Fatalf("No synthesis server found: %v", err)
		}
		log.Printf("Discovered %s at %s:%d", server.Name, server.Host, server.Port)
		cfg.Synthesis.Mode = "http"
		cfg.Synthesis.Endpoint = server.Endpoint()
	}

	application, err := app.New(app.Config{Settings: cfg})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()

	if !useTUI {
		runHeadless(application, *text)
		return
	}

	controls := ui.NewControls()
	program, err := ui.Run(controls)
	if err != nil {
		log.Fatalf("Failed to start TUI: %v", err)
	}
	go program.Run()

	go statusLoop(application, program)
	go spectrumLoop(application, program)
	go commandLoop(application, cfg, program, controls)

	if *text != "" {
		go func() {
			if err := application.Speak(context.Background(), *text); err != nil {
				program.Send(ui.ErrorMsg(err.Error()))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-controls.Quit:
		log.Printf("Quit from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
	}

	program.Quit()
	log.Printf("Player stopped")
}

// runHeadless speaks the given text once and blocks until playback ends
func runHeadless(application *app.App, text string) {
	if text == "" {
		log.Fatalf("-no-tui requires -text")
	}

	done := make(chan struct{})
	controller := application.Controller()

	if err := application.Speak(context.Background(), text); err != nil {
		log.Fatalf("Speak failed: %v", err)
	}

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if controller.State() == playback.Stopped {
				close(done)
				return
			}
		}
	}()
	<-done
}

// statusLoop periodically pushes transport state into the TUI
func statusLoop(application *app.App, program *tea.Program) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	controller := application.Controller()
	for range ticker.C {
		msg := ui.StatusMsg{
			State:    controller.State().String(),
			Position: controller.Position(),
			Rate:     controller.Rate(),
			Pitch:    controller.Pitch(),
			Voice:    application.Voice(),
		}
		if buf := controller.Buffer(); buf != nil {
			msg.Duration = buf.Duration()
		}
		program.Send(msg)
	}
}

// spectrumLoop forwards analyzer snapshots into the TUI
func spectrumLoop(application *app.App, program *tea.Program) {
	for snap := range application.Controller().Snapshots() {
		program.Send(ui.SpectrumMsg(snap.Bins))
	}
}

// commandLoop executes user intents coming out of the TUI
func commandLoop(application *app.App, cfg config.Config, program *tea.Program, controls *ui.Controls) {
	ctx := context.Background()
	controller := application.Controller()

	report := func(err error) {
		if err != nil {
			log.Printf("Command failed: %v", err)
			program.Send(ui.ErrorMsg(err.Error()))
		}
	}

	for cmd := range controls.Commands {
		switch cmd.Kind {
		case ui.CmdSpeak:
			report(application.Speak(ctx, cmd.Text))
		case ui.CmdToggle:
			if controller.State() == playback.Playing {
				report(controller.Pause())
			} else {
				report(controller.Play())
			}
		case ui.CmdStop:
			controller.Stop()
		case ui.CmdRestart:
			report(controller.Restart())
		case ui.CmdRateUp:
			report(clampedRate(controller, controller.Rate()+rateStep))
		case ui.CmdRateDown:
			report(clampedRate(controller, controller.Rate()-rateStep))
		case ui.CmdPitchUp:
			report(clampedPitch(controller, controller.Pitch()+pitchStep))
		case ui.CmdPitchDown:
			report(clampedPitch(controller, controller.Pitch()-pitchStep))
		case ui.CmdSave:
			entry, err := application.Save(ctx)
			if err == nil {
				program.Send(ui.StatusMsg{Note: fmt.Sprintf("saved %s", entry.ID[:8])})
				sendHistory(ctx, application, program)
			}
			report(err)
		case ui.CmdExport:
			path, err := application.Export(cfg.Export.Dir)
			if err == nil {
				program.Send(ui.StatusMsg{Note: "exported " + path})
			}
			report(err)
		case ui.CmdReplay:
			report(application.Replay(ctx, cmd.ID))
		case ui.CmdDelete:
			err := application.History().Delete(ctx, cmd.ID)
			if err == nil {
				sendHistory(ctx, application, program)
			}
			report(err)
		case ui.CmdRefreshHistory:
			sendHistory(ctx, application, program)
		}
	}
}

// clampedRate keeps UI rate steps inside the controller's bounds
// instead of surfacing range errors for ordinary key presses
func clampedRate(controller *playback.Controller, rate float64) error {
	if rate < playback.MinRate {
		rate = playback.MinRate
	}
	if rate > playback.MaxRate {
		rate = playback.MaxRate
	}
	return controller.SetRate(rate)
}

func clampedPitch(controller *playback.Controller, cents float64) error {
	if cents < playback.MinPitchCents {
		cents = playback.MinPitchCents
	}
	if cents > playback.MaxPitchCents {
		cents = playback.MaxPitchCents
	}
	return controller.SetPitch(cents)
}

// sendHistory pushes the latest history metadata into the TUI
func sendHistory(ctx context.Context, application *app.App, program *tea.Program) {
	entries, err := application.History().List(ctx, 0)
	if err != nil {
		log.Printf("List history: %v", err)
		return
	}

	items := make([]ui.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, ui.HistoryItem{
			ID:        e.ID,
			Text:      e.Text,
			Voice:     e.Voice,
			Duration:  e.Duration,
			CreatedAt: e.CreatedAt,
		})
	}
	program.Send(ui.HistoryMsg(items))
}
