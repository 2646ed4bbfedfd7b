// ABOUTME: Main player application orchestration
// ABOUTME: Loads the module, starts the device with the bridge callback, tears down in reverse
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/modbridge/modbridge/internal/bridge"
	"github.com/modbridge/modbridge/pkg/audio"
	"github.com/modbridge/modbridge/pkg/audio/decode"
	"github.com/modbridge/modbridge/pkg/audio/output"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PlayingMessage is printed once the device is running
const PlayingMessage = "Audio is playing now. Press Enter to stop playback..."

// Config holds player configuration
type Config struct {
	Path      string
	Volume    int
	EndPolicy bridge.EndPolicy
	Backend   string
	// Quiet suppresses the playing prompt, for non-interactive runs
	Quiet bool
}

// Player runs one playback session from load to teardown
type Player struct {
	config     Config
	newDecoder func() (decode.Decoder, error)
	newDevice  func() (output.Device, error)
	stdout     io.Writer
	stop       <-chan struct{}
	onStart    func(*bridge.Session)
	logger     *zap.SugaredLogger

	states []State
	mu     sync.Mutex
}

// Option customizes a Player
type Option func(*Player)

// WithDecoder sets the decoder constructor
func WithDecoder(newDecoder func() (decode.Decoder, error)) Option {
	return func(p *Player) { p.newDecoder = newDecoder }
}

// WithDevice sets the output device constructor
func WithDevice(newDevice func() (output.Device, error)) Option {
	return func(p *Player) { p.newDevice = newDevice }
}

// WithOutput sets where console messages are written
func WithOutput(w io.Writer) Option {
	return func(p *Player) { p.stdout = w }
}

// WithStop sets the channel that ends playback when closed
func WithStop(stop <-chan struct{}) Option {
	return func(p *Player) { p.stop = stop }
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Player) { p.logger = logger }
}

// OnStart registers a function called with the session once playing
func OnStart(fn func(*bridge.Session)) Option {
	return func(p *Player) { p.onStart = fn }
}

// New creates a player. By default it decodes with decode.New and plays
// through the backend named in config.
func New(config Config, opts ...Option) *Player {
	p := &Player{
		config:     config,
		newDecoder: decode.New,
		stdout:     os.Stdout,
		logger:     zap.NewNop().Sugar(),
	}
	p.newDevice = func() (output.Device, error) {
		return output.New(p.config.Backend)
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.Named("app")
	return p
}

// Run executes the session. Every resource acquired is released on every
// return path, device first, then the decoder's player, module and context.
func (p *Player) Run(ctx context.Context) (err error) {
	p.setState(StateUninitialized)
	if p.config.Path == "" {
		return ErrUsage
	}

	format := audio.DefaultFormat()

	dec, err := p.newDecoder()
	if err != nil || dec == nil {
		return &AllocationError{Err: err}
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(dec.Close))
	p.setState(StateDecoderCreated)

	if err := dec.Load(p.config.Path); err != nil {
		p.logger.Errorw("Module load failed", "path", p.config.Path, "error", err)
		return &LoadError{Path: p.config.Path, Err: err}
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(dec.Release))
	p.setState(StateModuleLoaded)

	info := dec.Info()
	p.logger.Infow("Module loaded", "path", info.Path, "format", info.Format, "bytes", info.Size)

	if err := dec.Start(format.SampleRate); err != nil {
		return fmt.Errorf("failed to start decoder: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(dec.Stop))
	dec.SetVolume(p.config.Volume)
	p.setState(StateDecoderStarted)

	session := bridge.NewSession(dec, p.config.EndPolicy)
	logger := p.logger.With("session", session.ID)

	// Runs after the device is uninitialized, so the callback is quiet
	defer func() {
		if serr := session.Err(); serr != nil {
			logger.Warnw("Decoder error during playback", "error", serr)
		}
	}()

	dev, err := p.newDevice()
	if err != nil {
		return &DeviceError{Backend: p.config.Backend, Err: err}
	}

	deviceConfig := output.DeviceConfig{
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
		Data:       bridge.DataCallback,
		UserData:   session,
	}
	if err := dev.Init(deviceConfig); err != nil {
		logger.Errorw("Device init failed", "backend", p.config.Backend, "error", err)
		return &DeviceError{Backend: p.config.Backend, Err: err}
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(dev.Uninit))
	p.setState(StateDeviceReady)

	if err := dev.Start(); err != nil {
		logger.Errorw("Device start failed", "backend", p.config.Backend, "error", err)
		return &DeviceError{Backend: p.config.Backend, Err: err}
	}
	p.setState(StatePlaying)
	logger.Infow("Playback started",
		"backend", p.config.Backend,
		"volume", p.config.Volume,
		"on_end", p.config.EndPolicy.String())

	if !p.config.Quiet {
		fmt.Fprintln(p.stdout, PlayingMessage)
	}
	if p.onStart != nil {
		p.onStart(session)
	}

	reason := p.wait(ctx, session, dev)

	p.setState(StateShutdown)
	logger.Infow("Stopping playback", "reason", reason, "elapsed", session.Elapsed().String())

	return nil
}

// wait blocks until a stop signal and returns its name
func (p *Player) wait(ctx context.Context, session *bridge.Session, dev output.Device) string {
	var deviceDone <-chan struct{}
	if f, ok := dev.(output.Finisher); ok {
		deviceDone = f.Done()
	}

	select {
	case <-p.stop:
		return "user"
	case <-session.Done():
		return "end of track"
	case <-deviceDone:
		return "device finished"
	case <-ctx.Done():
		return "interrupted"
	}
}

func (p *Player) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s)
	p.logger.Debugw("State transition", "state", s.String())
}

// States returns the states entered so far, in order
func (p *Player) States() []State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]State(nil), p.states...)
}
