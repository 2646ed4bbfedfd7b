// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for player UI
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a volume change from the UI
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	// Changes holds at most the latest unread change
	Changes chan VolumeChangeMsg
	// Quit is closed when the user stops playback
	Quit chan struct{}

	quitOnce sync.Once
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 1),
		Quit:    make(chan struct{}),
	}
}

// Publish queues change, replacing any change not yet read. It never blocks.
func (v *VolumeControl) Publish(change VolumeChangeMsg) {
	for {
		select {
		case v.Changes <- change:
			return
		default:
		}

		select {
		case <-v.Changes:
		default:
		}
	}
}

// RequestQuit closes Quit; safe to call more than once
func (v *VolumeControl) RequestQuit() {
	v.quitOnce.Do(func() { close(v.Quit) })
}

// NewModel creates a new TUI model
func NewModel(volCtrl *VolumeControl, volume int) Model {
	return Model{
		volume:     volume,
		policy:     "silence",
		keys:       DefaultKeyMap(),
		volumeCtrl: volCtrl,
	}
}

// Run creates the TUI program; the caller starts it
func Run(volCtrl *VolumeControl, volume int) *tea.Program {
	return tea.NewProgram(NewModel(volCtrl, volume), tea.WithAltScreen())
}
