// ABOUTME: Null audio output device
// ABOUTME: Pulls audio in real time on its own goroutine and discards it
package output

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultBlockFrames = 512

// Null device paces callbacks like a sound card but plays nothing. Useful
// for headless machines and tests.
type Null struct {
	// BlockFrames is the frame count requested per callback
	BlockFrames int
	// MaxFrames ends the stream once reached; zero means unlimited
	MaxFrames uint64

	config  DeviceConfig
	source  *puller
	frames  atomic.Uint64
	stop    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewNull creates a null device
func NewNull() *Null {
	return &Null{
		BlockFrames: defaultBlockFrames,
	}
}

// Init validates the config
func (n *Null) Init(config DeviceConfig) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := config.Validate(); err != nil {
		return err
	}
	if n.BlockFrames <= 0 {
		n.BlockFrames = defaultBlockFrames
	}

	n.config = config
	n.source = newPuller(config)
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	return nil
}

// Start launches the pacing goroutine
func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.source == nil {
		return ErrNotInitialized
	}
	if n.started {
		return ErrAlreadyStarted
	}
	n.started = true

	period := time.Duration(n.BlockFrames) * time.Second / time.Duration(n.config.SampleRate)
	buf := make([]byte, n.BlockFrames*n.config.BytesPerFrame())

	n.wg.Add(1)
	go n.run(period, buf)
	return nil
}

func (n *Null) run(period time.Duration, buf []byte) {
	defer n.wg.Done()
	defer close(n.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			if _, err := n.source.Read(buf); err != nil {
				return
			}
			total := n.frames.Add(uint64(n.BlockFrames))
			if n.MaxFrames > 0 && total >= n.MaxFrames {
				return
			}
		}
	}
}

// Done is closed when the device stops producing, either from Uninit or
// MaxFrames
func (n *Null) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.done
}

// Frames returns the number of frames pulled so far
func (n *Null) Frames() uint64 {
	return n.frames.Load()
}

// Uninit stops the goroutine and waits for it
func (n *Null) Uninit() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.source == nil {
		return nil
	}
	n.source.close()
	close(n.stop)
	n.wg.Wait()

	if !n.started {
		close(n.done)
	}
	n.source = nil
	n.started = false
	return nil
}
