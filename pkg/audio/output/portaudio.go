//go:build portaudio

// ABOUTME: PortAudio output device
// ABOUTME: Cross-platform audio output using a PortAudio callback stream
package output

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/modbridge/modbridge/pkg/audio"
)

const portAudioFramesPerBuffer = 512

// PortAudio output device
type PortAudio struct {
	stream  *portaudio.Stream
	scratch []byte
	started bool
	mu      sync.Mutex
}

// NewPortAudio creates a new PortAudio device
func NewPortAudio() Device {
	return &PortAudio{}
}

// Init initializes PortAudio and opens the default output stream
func (p *PortAudio) Init(config DeviceConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := config.Validate(); err != nil {
		return err
	}
	if p.stream != nil {
		return fmt.Errorf("device already initialized")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.scratch = make([]byte, portAudioFramesPerBuffer*config.BytesPerFrame())
	data := config.Data
	userData := config.UserData
	bytesPerFrame := config.BytesPerFrame()

	stream, err := portaudio.OpenDefaultStream(0, config.Channels, float64(config.SampleRate), portAudioFramesPerBuffer, func(out []int16) {
		frames := len(out) / config.Channels
		buf := p.scratch[:frames*bytesPerFrame]
		clear(buf)
		data(userData, buf, nil, uint32(frames))
		audio.Samples16(out, buf)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	return nil
}

// Start begins playback
func (p *PortAudio) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotInitialized
	}
	if p.started {
		return ErrAlreadyStarted
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.started = true
	return nil
}

// Uninit stops the stream, which waits for the callback to return
func (p *PortAudio) Uninit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	if p.started {
		if err := p.stream.Stop(); err != nil {
			return err
		}
		p.started = false
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	p.stream = nil
	return portaudio.Terminate()
}
