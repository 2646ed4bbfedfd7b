// ABOUTME: Malgo-based audio output device
// ABOUTME: Drives a miniaudio playback device whose data callback pulls from the caller
package output

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// Malgo output device using the malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	config   DeviceConfig
	started  bool
	logger   *zap.SugaredLogger
	mu       sync.Mutex
}

// NewMalgo creates a new Malgo device
func NewMalgo() Device {
	return &Malgo{
		logger: zap.S().Named("malgo"),
	}
}

// Init creates the miniaudio context and playback device
func (m *Malgo) Init(config DeviceConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := config.Validate(); err != nil {
		return err
	}
	if m.device != nil {
		return fmt.Errorf("device already initialized")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.logger.Debugf("miniaudio: %s", message)
	})
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(config.Channels)
	deviceConfig.SampleRate = uint32(config.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	data := config.Data
	userData := config.UserData
	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			data(userData, pOutputSample, pInputSamples, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		m.freeContext(ctx)
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.config = config

	m.logger.Infof("Playback device initialized: %dHz, %d channels, %d-bit (malgo/%s)",
		config.SampleRate, config.Channels, config.BitDepth, formatName(deviceConfig.Playback.Format))

	return nil
}

// Start begins playback
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrNotInitialized
	}
	if m.started {
		return ErrAlreadyStarted
	}

	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	m.started = true
	return nil
}

// Uninit stops the device and frees the miniaudio context. miniaudio blocks
// until the audio thread has left the data callback.
func (m *Malgo) Uninit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if m.started {
			if err := m.device.Stop(); err != nil {
				m.logger.Warnf("Device stop error: %v", err)
			}
			m.started = false
		}
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		m.freeContext(m.malgoCtx)
		m.malgoCtx = nil
	}
	return nil
}

func (m *Malgo) freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		m.logger.Warnf("Malgo context uninit error: %v", err)
	}
	ctx.Free()
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
