// ABOUTME: Offline WAV output device
// ABOUTME: Pulls audio as fast as possible and encodes it to a WAV file with go-audio
package output

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/modbridge/modbridge/pkg/audio"
	"go.uber.org/multierr"
)

const wavBlockFrames = 1024

// WAV renders the stream to a file instead of a sound card
type WAV struct {
	// Path of the WAV file to create
	Path string
	// MaxFrames ends the render once reached; zero means until Uninit
	MaxFrames uint64
	// StopOn ends the render when closed, checked between blocks. When nil
	// and the callback user data is a Finisher, its Done channel is used.
	StopOn <-chan struct{}

	config  DeviceConfig
	file    *os.File
	encoder *wav.Encoder
	source  *puller
	stopOn  <-chan struct{}
	frames  atomic.Uint64
	err     error
	stop    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewWAV creates a WAV device writing to path
func NewWAV(path string, maxFrames uint64) *WAV {
	return &WAV{
		Path:      path,
		MaxFrames: maxFrames,
	}
}

// Init creates the output file and encoder
func (w *WAV) Init(config DeviceConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := config.Validate(); err != nil {
		return err
	}
	if w.file != nil {
		return fmt.Errorf("device already initialized")
	}

	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}

	w.config = config
	w.file = f
	w.encoder = wav.NewEncoder(f, config.SampleRate, config.BitDepth, config.Channels, 1)
	w.source = newPuller(config)
	w.stopOn = w.StopOn
	if f, ok := config.UserData.(Finisher); ok && w.stopOn == nil {
		w.stopOn = f.Done()
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	return nil
}

// Start launches the render goroutine
func (w *WAV) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.source == nil {
		return ErrNotInitialized
	}
	if w.started {
		return ErrAlreadyStarted
	}
	w.started = true

	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *WAV) run() {
	defer w.wg.Done()
	defer close(w.done)

	raw := make([]byte, wavBlockFrames*w.config.BytesPerFrame())
	samples := make([]int16, wavBlockFrames*w.config.Channels)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: w.config.Channels,
			SampleRate:  w.config.SampleRate,
		},
		Data:           make([]int, 0, len(samples)),
		SourceBitDepth: w.config.BitDepth,
	}

	for {
		select {
		case <-w.stop:
			return
		case <-w.stopOn:
			return
		default:
		}

		frames := uint64(wavBlockFrames)
		if w.MaxFrames > 0 {
			left := w.MaxFrames - w.frames.Load()
			if left < frames {
				frames = left
			}
		}
		block := raw[:int(frames)*w.config.BytesPerFrame()]

		n, err := w.source.Read(block)
		if err != nil {
			return
		}

		count := audio.Samples16(samples, block[:n])
		buf.Data = buf.Data[:count]
		for i := 0; i < count; i++ {
			buf.Data[i] = int(samples[i])
		}
		if err := w.encoder.Write(buf); err != nil {
			w.err = fmt.Errorf("failed to write WAV data: %w", err)
			return
		}

		total := w.frames.Add(frames)
		if w.MaxFrames > 0 && total >= w.MaxFrames {
			return
		}
	}
}

// Done is closed once rendering stops
func (w *WAV) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Frames returns the number of frames rendered so far
func (w *WAV) Frames() uint64 {
	return w.frames.Load()
}

// Uninit stops rendering and finalizes the WAV header
func (w *WAV) Uninit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	w.source.close()
	close(w.stop)
	w.wg.Wait()
	if !w.started {
		close(w.done)
	}

	err := w.err
	err = multierr.Append(err, w.encoder.Close())
	err = multierr.Append(err, w.file.Close())

	w.file = nil
	w.encoder = nil
	w.source = nil
	w.started = false
	return err
}
