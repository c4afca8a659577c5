// ABOUTME: Tests for TUI model and state management
// ABOUTME: Covers status updates, key commands, and spectrum rendering
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)

	if model.state != "stopped" {
		t.Errorf("initial state = %q, want stopped", model.state)
	}
	if model.rate != 1.0 {
		t.Errorf("initial rate = %v, want 1.0", model.rate)
	}
	if model.inputMode {
		t.Error("expected inputMode to be false initially")
	}
	if model.showHistory {
		t.Error("expected showHistory to be false initially")
	}
}

func TestApplyStatus(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		State:    "playing",
		Position: 1500 * time.Millisecond,
		Duration: 3 * time.Second,
		Rate:     1.5,
		Pitch:    -200,
		Voice:    "default",
	})

	if model.state != "playing" {
		t.Errorf("state = %q, want playing", model.state)
	}
	if model.position != 1500*time.Millisecond {
		t.Errorf("position = %v, want 1.5s", model.position)
	}
	if model.rate != 1.5 {
		t.Errorf("rate = %v, want 1.5", model.rate)
	}
	if model.pitch != -200.0 {
		t.Errorf("pitch = %v, want -200", model.pitch)
	}
}

func TestStatusNoteClearsError(t *testing.T) {
	model := NewModel(nil)

	model.lastErr = "synthesis failed"
	model.applyStatus(StatusMsg{Note: "saved"})

	if model.lastErr != "" {
		t.Errorf("lastErr = %q, want cleared", model.lastErr)
	}
	if model.note != "saved" {
		t.Errorf("note = %q, want saved", model.note)
	}
}

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{}
}

func drain(controls *Controls) []Command {
	var cmds []Command
	for {
		select {
		case cmd := <-controls.Commands:
			cmds = append(cmds, cmd)
		default:
			return cmds
		}
	}
}

func TestTransportKeysSendCommands(t *testing.T) {
	tests := []struct {
		key  string
		want CommandKind
	}{
		{"space", CmdToggle},
		{"s", CmdStop},
		{"r", CmdRestart},
		{"+", CmdRateUp},
		{"-", CmdRateDown},
		{"]", CmdPitchUp},
		{"[", CmdPitchDown},
		{"w", CmdSave},
		{"e", CmdExport},
	}

	for _, tt := range tests {
		controls := NewControls()
		model := NewModel(controls)

		model.handleKey(keyMsg(tt.key))

		cmds := drain(controls)
		if len(cmds) != 1 {
			t.Errorf("key %q sent %d commands, want 1", tt.key, len(cmds))
			continue
		}
		if cmds[0].Kind != tt.want {
			t.Errorf("key %q sent kind %d, want %d", tt.key, cmds[0].Kind, tt.want)
		}
	}
}

func TestInputModeSubmitsSpeakCommand(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls)

	next, _ := model.handleKey(keyMsg("i"))
	model = next.(Model)
	if !model.inputMode {
		t.Fatal("expected inputMode after pressing i")
	}

	for _, r := range "hi" {
		next, _ = model.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = next.(Model)
	}
	next, _ = model.handleKey(keyMsg("space"))
	model = next.(Model)
	for _, r := range "there" {
		next, _ = model.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = next.(Model)
	}

	next, _ = model.handleKey(keyMsg("enter"))
	model = next.(Model)

	cmds := drain(controls)
	if len(cmds) != 1 || cmds[0].Kind != CmdSpeak {
		t.Fatalf("commands after submit = %+v, want one CmdSpeak", cmds)
	}
	if cmds[0].Text != "hi there" {
		t.Errorf("submitted text = %q, want %q", cmds[0].Text, "hi there")
	}
	if model.inputMode {
		t.Error("expected inputMode to end after submit")
	}
}

func TestInputModeEscCancels(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls)
	model.inputMode = true
	model.input = "half typed"

	next, _ := model.handleKey(keyMsg("esc"))
	model = next.(Model)

	if model.inputMode {
		t.Error("expected esc to leave inputMode")
	}
	if cmds := drain(controls); len(cmds) != 0 {
		t.Errorf("esc sent %d commands, want 0", len(cmds))
	}
}

func TestHistoryNavigationAndReplay(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls)

	next, _ := model.Update(HistoryMsg{
		{ID: "aaa", Text: "first"},
		{ID: "bbb", Text: "second"},
	})
	model = next.(Model)

	nextM, _ := model.handleKey(keyMsg("tab"))
	model = nextM.(Model)
	if !model.showHistory {
		t.Fatal("expected tab to show history")
	}
	drain(controls) // discard refresh command

	nextM, _ = model.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	model = nextM.(Model)
	if model.selected != 1 {
		t.Errorf("selected = %d, want 1", model.selected)
	}

	model.handleKey(keyMsg("enter"))
	cmds := drain(controls)
	if len(cmds) != 1 || cmds[0].Kind != CmdReplay || cmds[0].ID != "bbb" {
		t.Fatalf("enter sent %+v, want CmdReplay for bbb", cmds)
	}
}

func TestHistoryShrinkClampsSelection(t *testing.T) {
	model := NewModel(nil)
	model.selected = 3

	next, _ := model.Update(HistoryMsg{{ID: "only"}})
	model = next.(Model)

	if model.selected != 0 {
		t.Errorf("selected = %d, want 0 after list shrank", model.selected)
	}
}

func TestRenderBar(t *testing.T) {
	bar := renderBar(500*time.Millisecond, time.Second, 10)
	if bar != "█████░░░░░" {
		t.Errorf("bar at 50%% = %q", bar)
	}

	full := renderBar(2*time.Second, time.Second, 4)
	if full != "████" {
		t.Errorf("bar past end = %q, want fully filled", full)
	}

	empty := renderBar(0, 0, 4)
	if empty != "░░░░" {
		t.Errorf("bar with zero duration = %q, want empty", empty)
	}
}

func TestSpectrumLine(t *testing.T) {
	if got := spectrumLine(nil, 5); got != "     " {
		t.Errorf("empty bins = %q, want blanks", got)
	}

	bins := []float64{0, 0, 1, 1, 2, 2, 4, 4}
	line := spectrumLine(bins, 4)
	if len([]rune(line)) != 4 {
		t.Fatalf("line has %d columns, want 4", len([]rune(line)))
	}
	runes := []rune(line)
	if runes[0] != ' ' {
		t.Errorf("silent column rendered %q, want space", runes[0])
	}
	if runes[3] != '█' {
		t.Errorf("peak column rendered %q, want full block", runes[3])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a very long utterance text", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestViewShowsError(t *testing.T) {
	model := NewModel(nil)
	model.width = 80
	model.height = 24
	model.lastErr = "playback unavailable"

	if view := model.View(); !strings.Contains(view, "playback unavailable") {
		t.Error("view does not show the last error")
	}
}
