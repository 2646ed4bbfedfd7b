// ABOUTME: Key bindings for the player TUI
// ABOUTME: Volume, mute, debug and stop keys as bubbles key bindings
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the player
type KeyMap struct {
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mute       key.Binding
	Debug      key.Binding
	Stop       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		VolumeUp: key.NewBinding(
			key.WithKeys("up", "+"),
			key.WithHelp("↑", "vol+"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "vol-"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "debug"),
		),
		Stop: key.NewBinding(
			key.WithKeys("q", "enter", "ctrl+c"),
			key.WithHelp("q/enter", "stop"),
		),
	}
}

// help renders the short help line
func (k KeyMap) help() string {
	s := ""
	for i, b := range []key.Binding{k.VolumeUp, k.VolumeDown, k.Mute, k.Debug, k.Stop} {
		if i > 0 {
			s += "  "
		}
		h := b.Help()
		s += h.Key + ":" + h.Desc
	}
	return s
}
