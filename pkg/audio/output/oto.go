// ABOUTME: Oto-based audio output device
// ABOUTME: Oto's player reads from a pull adapter that forwards to the data callback
package output

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// oto only allows one context per process
var (
	otoOnce     sync.Once
	otoCtx      *oto.Context
	otoErr      error
	otoRate     int
	otoChannels int
)

func sharedOtoContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoRate = sampleRate
		otoChannels = channels
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate || otoChannels != channels {
		return nil, fmt.Errorf("oto context already created at %dHz %dch, cannot reopen at %dHz %dch",
			otoRate, otoChannels, sampleRate, channels)
	}
	if err := otoCtx.Resume(); err != nil {
		return nil, fmt.Errorf("failed to resume oto context: %w", err)
	}
	return otoCtx, nil
}

// Oto output device using the oto library
type Oto struct {
	otoCtx *oto.Context
	player *oto.Player
	source *puller
	logger *zap.SugaredLogger
	mu     sync.Mutex
}

// NewOto creates a new Oto device
func NewOto() Device {
	return &Oto{
		logger: zap.S().Named("oto"),
	}
}

// Init opens the oto context and creates a player reading from the callback
func (o *Oto) Init(config DeviceConfig) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := config.Validate(); err != nil {
		return err
	}
	if o.player != nil {
		return fmt.Errorf("device already initialized")
	}

	ctx, err := sharedOtoContext(config.SampleRate, config.Channels)
	if err != nil {
		return err
	}

	o.otoCtx = ctx
	o.source = newPuller(config)
	o.player = ctx.NewPlayer(o.source)

	o.logger.Infof("Playback device initialized: %dHz, %d channels (oto)", config.SampleRate, config.Channels)
	return nil
}

// Start begins playback
func (o *Oto) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return ErrNotInitialized
	}
	if o.player.IsPlaying() {
		return ErrAlreadyStarted
	}

	o.player.Play()
	return nil
}

// Uninit stops the player. The pull adapter is closed first so no callback
// runs after Uninit returns.
func (o *Oto) Uninit() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.source != nil {
		o.source.close()
		o.source = nil
	}
	if o.player != nil {
		o.player.Pause()
		if err := o.player.Close(); err != nil {
			o.logger.Warnf("Player close error: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			o.logger.Warnf("Oto context suspend error: %v", err)
		}
		o.otoCtx = nil
	}
	return nil
}
