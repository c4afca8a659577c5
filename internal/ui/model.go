// ABOUTME: Bubbletea model for the Intone player TUI
// ABOUTME: Renders transport, spectrum bars, and the utterance history
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// spectrumColumns is how many bars the spectrum view draws
const spectrumColumns = 48

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	selectStyle = lipgloss.NewStyle().Reverse(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Command is a user intent sent from the TUI to the application
type Command struct {
	Kind CommandKind
	Text string // Speak
	ID   string // Replay, Delete
}

// CommandKind enumerates the actions the TUI can request
type CommandKind int

const (
	CmdSpeak CommandKind = iota
	CmdToggle
	CmdStop
	CmdRestart
	CmdRateUp
	CmdRateDown
	CmdPitchUp
	CmdPitchDown
	CmdSave
	CmdExport
	CmdReplay
	CmdDelete
	CmdRefreshHistory
)

// Controls carries user intents out of the TUI event loop
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates the command channels the TUI publishes on
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 16),
		Quit:     make(chan struct{}, 1),
	}
}

// send publishes a command without blocking the render loop
func (c *Controls) send(cmd Command) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
	}
}

// quit signals the application to shut down
func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// HistoryItem is one history row as the TUI displays it
type HistoryItem struct {
	ID        string
	Text      string
	Voice     string
	Duration  float64
	CreatedAt time.Time
}

// StatusMsg updates the transport display
type StatusMsg struct {
	State    string
	Position time.Duration
	Duration time.Duration
	Rate     float64
	Pitch    float64
	Voice    string
	Note     string
}

// SpectrumMsg carries one analyzer snapshot's magnitude bins
type SpectrumMsg []float64

// HistoryMsg replaces the displayed history list
type HistoryMsg []HistoryItem

// ErrorMsg shows a user-visible failure
type ErrorMsg string

// Model represents the TUI state
type Model struct {
	controls *Controls

	// Text entry
	input     string
	inputMode bool

	// Transport
	state    string
	position time.Duration
	duration time.Duration
	rate     float64
	pitch    float64
	voice    string

	// Spectrum
	spectrum []float64

	// History pane
	showHistory bool
	history     []HistoryItem
	selected    int

	// Messages
	note    string
	lastErr string

	width  int
	height int
}

// NewModel creates the initial TUI model
func NewModel(controls *Controls) Model {
	return Model{
		controls: controls,
		state:    "stopped",
		rate:     1.0,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case SpectrumMsg:
		m.spectrum = msg
	case HistoryMsg:
		m.history = msg
		if m.selected >= len(m.history) {
			m.selected = len(m.history) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
	case ErrorMsg:
		m.lastErr = string(msg)
	}

	return m, nil
}

// applyStatus updates transport state from a status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.State != "" {
		m.state = msg.State
	}
	m.position = msg.Position
	if msg.Duration > 0 {
		m.duration = msg.Duration
	}
	if msg.Rate > 0 {
		m.rate = msg.Rate
	}
	m.pitch = msg.Pitch
	if msg.Voice != "" {
		m.voice = msg.Voice
	}
	if msg.Note != "" {
		m.note = msg.Note
		m.lastErr = ""
	}
}

// handleKey handles keyboard input. Text entry is modal: "i" starts
// editing, enter submits, esc cancels; every other key is transport.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case "i", "/":
		m.inputMode = true
		m.lastErr = ""
	case " ":
		m.controls.send(Command{Kind: CmdToggle})
	case "s":
		m.controls.send(Command{Kind: CmdStop})
	case "r":
		m.controls.send(Command{Kind: CmdRestart})
	case "+", "=":
		m.controls.send(Command{Kind: CmdRateUp})
	case "-":
		m.controls.send(Command{Kind: CmdRateDown})
	case "]":
		m.controls.send(Command{Kind: CmdPitchUp})
	case "[":
		m.controls.send(Command{Kind: CmdPitchDown})
	case "w":
		m.controls.send(Command{Kind: CmdSave})
	case "e":
		m.controls.send(Command{Kind: CmdExport})
	case "tab":
		m.showHistory = !m.showHistory
		if m.showHistory {
			m.controls.send(Command{Kind: CmdRefreshHistory})
		}
	case "up", "k":
		if m.showHistory && m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.showHistory && m.selected < len(m.history)-1 {
			m.selected++
		}
	case "enter":
		if m.showHistory && m.selected < len(m.history) {
			m.controls.send(Command{Kind: CmdReplay, ID: m.history[m.selected].ID})
		}
	case "x":
		if m.showHistory && m.selected < len(m.history) {
			m.controls.send(Command{Kind: CmdDelete, ID: m.history[m.selected].ID})
		}
	}

	return m, nil
}

// handleInputKey edits the text entry line
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = false
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input)
		if text != "" {
			m.controls.send(Command{Kind: CmdSpeak, Text: text})
		}
		m.input = ""
		m.inputMode = false
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
	case tea.KeyCtrlC:
		m.controls.quit()
		return m, tea.Quit
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Intone") + labelStyle.Render("  text to speech player") + "\n\n")
	b.WriteString(m.renderInput() + "\n")
	b.WriteString(m.renderTransport() + "\n")
	b.WriteString(m.renderSpectrum() + "\n")

	if m.showHistory {
		b.WriteString(m.renderHistory())
	}

	if m.lastErr != "" {
		b.WriteString(errorStyle.Render("error: "+m.lastErr) + "\n")
	} else if m.note != "" {
		b.WriteString(labelStyle.Render(m.note) + "\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderInput renders the text entry line
func (m Model) renderInput() string {
	prompt := labelStyle.Render("say> ")
	if m.inputMode {
		return prompt + m.input + activeStyle.Render("▌")
	}
	if m.input == "" {
		return prompt + helpStyle.Render("(press i to type)")
	}
	return prompt + m.input
}

// renderTransport renders state, position bar, rate, and pitch
func (m Model) renderTransport() string {
	var stateLabel string
	switch m.state {
	case "playing":
		stateLabel = activeStyle.Render("▶ playing")
	case "paused":
		stateLabel = "⏸ paused "
	default:
		stateLabel = "■ stopped"
	}

	bar := renderBar(m.position, m.duration, 30)
	pos := fmt.Sprintf("%5.1fs / %.1fs", m.position.Seconds(), m.duration.Seconds())

	line1 := fmt.Sprintf("%s  [%s] %s", stateLabel, barStyle.Render(bar), pos)
	line2 := labelStyle.Render(fmt.Sprintf("rate %.2fx   pitch %+.0f cents   voice %s",
		m.rate, m.pitch, m.voice))
	return line1 + "\n" + line2
}

// renderSpectrum draws the magnitude bins as one line of block glyphs
func (m Model) renderSpectrum() string {
	cols := spectrumColumns
	if m.width > 0 && m.width-4 < cols {
		cols = m.width - 4
	}
	if cols <= 0 {
		return ""
	}
	return barStyle.Render(spectrumLine(m.spectrum, cols))
}

// renderHistory renders the saved utterance list
func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("history") + "\n")

	if len(m.history) == 0 {
		b.WriteString(helpStyle.Render("  (empty)") + "\n")
		return b.String()
	}

	for i, item := range m.history {
		line := fmt.Sprintf("  %s  %5.1fs  %s",
			item.CreatedAt.Local().Format("Jan 02 15:04"),
			item.Duration,
			truncate(item.Text, 40))
		if i == m.selected {
			line = selectStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	if m.inputMode {
		return helpStyle.Render("enter:speak  esc:cancel")
	}
	help := "i:type  space:pause  s:stop  r:restart  -/+:rate  [/]:pitch  w:save  e:export  tab:history  q:quit"
	if m.showHistory {
		help = "enter:replay  x:delete  " + help
	}
	return helpStyle.Render(help)
}

// renderBar draws a filled progress bar for position within duration
func renderBar(position, duration time.Duration, width int) string {
	filled := 0
	if duration > 0 {
		filled = int(float64(width) * float64(position) / float64(duration))
		if filled > width {
			filled = width
		}
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	return b.String()
}

// spectrumGlyphs maps a normalized magnitude to a bar height
var spectrumGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// spectrumLine folds magnitude bins into cols columns and renders each
// as a block glyph scaled against the loudest column
func spectrumLine(bins []float64, cols int) string {
	if len(bins) == 0 {
		return strings.Repeat(" ", cols)
	}

	columns := make([]float64, cols)
	perCol := len(bins) / cols
	if perCol < 1 {
		perCol = 1
	}
	peak := 0.0
	for c := range columns {
		start := c * perCol
		if start >= len(bins) {
			break
		}
		end := start + perCol
		if end > len(bins) {
			end = len(bins)
		}
		sum := 0.0
		for _, v := range bins[start:end] {
			sum += v
		}
		columns[c] = sum / float64(end-start)
		if columns[c] > peak {
			peak = columns[c]
		}
	}

	var b strings.Builder
	for _, v := range columns {
		idx := 0
		if peak > 0 {
			idx = int(v / peak * float64(len(spectrumGlyphs)-1))
		}
		b.WriteRune(spectrumGlyphs[idx])
	}
	return b.String()
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
