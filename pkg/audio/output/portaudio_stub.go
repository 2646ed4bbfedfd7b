//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"
)

// PortAudio output device (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio device
func NewPortAudio() Device {
	return &PortAudio{}
}

// Init initializes PortAudio
func (p *PortAudio) Init(config DeviceConfig) error {
	return fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Start begins playback
func (p *PortAudio) Start() error {
	return ErrNotInitialized
}

// Uninit releases resources
func (p *PortAudio) Uninit() error {
	return nil
}
