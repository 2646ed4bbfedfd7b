// ABOUTME: Audio output device interface definition
// ABOUTME: Common callback-driven contract for audio playback backends
package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidConfig  = errors.New("invalid device config")
	ErrNotInitialized = errors.New("device not initialized")
	ErrAlreadyStarted = errors.New("device already started")
)

// DataProc is invoked by a device on its audio thread to request frameCount
// frames in output. input is nil for playback-only devices.
type DataProc func(userData any, output, input []byte, frameCount uint32)

// DeviceConfig describes a playback stream
type DeviceConfig struct {
	SampleRate int
	Channels   int
	BitDepth   int

	// Data is called with UserData each time the device needs audio
	Data     DataProc
	UserData any
}

// BytesPerFrame returns the size of one interleaved frame
func (c DeviceConfig) BytesPerFrame() int {
	return c.Channels * c.BitDepth / 8
}

// Validate checks the config is usable by a device
func (c DeviceConfig) Validate() error {
	if c.Data == nil {
		return fmt.Errorf("%w: no data callback", ErrInvalidConfig)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrInvalidConfig, c.Channels)
	}
	if c.BitDepth != 16 {
		return fmt.Errorf("%w: unsupported bit depth %d (supported: 16)", ErrInvalidConfig, c.BitDepth)
	}
	return nil
}

// Device represents an audio output device that pulls data through a callback
type Device interface {
	// Init opens the device with the given config
	Init(config DeviceConfig) error

	// Start begins invoking the data callback
	Start() error

	// Uninit stops the stream and releases the device. Once it returns the
	// data callback is never invoked again.
	Uninit() error
}

// Finisher reports completion by closing a channel. Devices that can end on
// their own implement it; the WAV device also honours it on callback user data.
type Finisher interface {
	Done() <-chan struct{}
}

// Backend names
const (
	BackendMalgo     = "malgo"
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendDiscard   = "discard"
)

var backends = map[string]func() Device{
	BackendMalgo:     NewMalgo,
	BackendOto:       NewOto,
	BackendPortAudio: NewPortAudio,
	BackendDiscard:   func() Device { return NewNull() },
}

// Backends returns the names accepted by New
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a device for the named backend
func New(name string) (Device, error) {
	newDevice, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown audio backend %q (available: %s)", name, strings.Join(Backends(), ", "))
	}
	return newDevice(), nil
}
