// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines playback display state and key handling
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/modbridge/modbridge/pkg/audio"
)

const volumeStep = 5

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	endedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Module
	title  string
	format string
	path   string

	// Output
	backend    string
	policy     string
	sampleRate int
	channels   int
	bitDepth   int

	// Playback
	volume  int
	muted   bool
	frames  uint64
	elapsed time.Duration
	ended   bool

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64

	keys       KeyMap
	volumeCtrl *VolumeControl
	quitting   bool

	width  int
	height int
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
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback...\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderControls())
	if m.showDebug {
		b.WriteString(m.renderDebug())
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.title
	if title == "" {
		title = "(untitled)"
	}
	format := m.format
	if format == "" {
		format = "?"
	}

	s := "┌─ modbridge ──────────────────────────────────────────┐\n"
	s += "│ Module: " + titleStyle.Render(fmt.Sprintf("%-44s", truncate(title, 44))) + " │\n"
	s += fmt.Sprintf("│ File:   %-44s │\n", truncate(m.path, 44))
	s += fmt.Sprintf("│ Format: %-44s │\n", truncate(fmt.Sprintf("%s  %dHz %s %d-bit",
		strings.ToUpper(format), m.sampleRate, channelName(m.channels), m.bitDepth), 44))
	s += "├──────────────────────────────────────────────────────┤\n"
	return s
}

func (m Model) renderControls() string {
	muteText := fmt.Sprintf("%-22s", "")
	if m.muted {
		muteText = mutedStyle.Render(fmt.Sprintf("%-22s", " (muted)"))
	}

	state := fmt.Sprintf("%-44s", truncate("Playing, on end: "+m.policy, 44))
	if m.ended {
		state = endedStyle.Render(fmt.Sprintf("%-44s", truncate("Song ended, on end: "+m.policy, 44)))
	}

	s := fmt.Sprintf("│ Volume: [%s] %3d%%%s │\n",
		renderBar(m.volume, audio.MaxVolume, 10), m.volume, muteText)
	s += fmt.Sprintf("│ Time:   %-44s │\n", formatElapsed(m.elapsed))
	s += fmt.Sprintf("│ State:  %s │\n", state)
	s += fmt.Sprintf("│ Output: %-44s │\n", truncate(m.backend, 44))
	return s
}

func (m Model) renderDebug() string {
	s := "│ DEBUG:                                               │\n"
	s += fmt.Sprintf("│   Frames:     %-38d │\n", m.frames)
	s += fmt.Sprintf("│   Goroutines: %-38d │\n", m.goroutines)
	s += fmt.Sprintf("│   Heap:       %-38s │\n", fmt.Sprintf("%.1f MiB", float64(m.memAlloc)/(1<<20)))
	return s
}

func (m Model) renderHelp() string {
	return "├──────────────────────────────────────────────────────┤\n" +
		"│ " + helpStyle.Render(fmt.Sprintf("%-52s", truncate(m.keys.help(), 52))) + " │\n" +
		"└──────────────────────────────────────────────────────┘\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Stop):
		m.quitting = true
		if m.volumeCtrl != nil {
			m.volumeCtrl.RequestQuit()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.VolumeUp):
		m.volume = audio.ClampVolume(m.volume + volumeStep)
		m.sendVolume()
	case key.Matches(msg, m.keys.VolumeDown):
		m.volume = audio.ClampVolume(m.volume - volumeStep)
		m.sendVolume()
	case key.Matches(msg, m.keys.Mute):
		m.muted = !m.muted
		m.sendVolume()
	case key.Matches(msg, m.keys.Debug):
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// sendVolume reports the current volume without blocking the UI; only the
// latest value is kept
func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	m.volumeCtrl.Publish(VolumeChangeMsg{Volume: m.volume, Muted: m.muted})
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
	}
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.Path != "" {
		m.path = msg.Path
	}
	if msg.Backend != "" {
		m.backend = msg.Backend
	}
	if msg.Policy != "" {
		m.policy = msg.Policy
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.Volume != nil {
		m.volume = audio.ClampVolume(*msg.Volume)
	}
	if msg.Frames != 0 {
		m.frames = msg.Frames
		m.elapsed = msg.Elapsed
	}
	if msg.Ended {
		m.ended = true
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
	}
}

// StatusMsg updates TUI state. Zero fields leave the current value.
type StatusMsg struct {
	Title      string
	Format     string
	Path       string
	Backend    string
	Policy     string
	SampleRate int
	Channels   int
	BitDepth   int
	Volume     *int
	Frames     uint64
	Elapsed    time.Duration
	Ended      bool
	Goroutines int
	MemAlloc   uint64
}

func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len([]rune(s)) <= length {
		return s
	}
	r := []rune(s)
	return string(r[:length-3]) + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatElapsed(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
