// ABOUTME: Decoder interface definition
// ABOUTME: Pull-based tracker module decoder contract used by the playback bridge
package decode

import "errors"

var (
	ErrNoModule          = errors.New("no module loaded")
	ErrAlreadyLoaded     = errors.New("module already loaded")
	ErrNotStarted        = errors.New("player not started")
	ErrUnsupportedFormat = errors.New("unsupported module format")
	ErrClosed            = errors.New("decoder closed")
)

// ModuleInfo describes a loaded module
type ModuleInfo struct {
	Path   string
	Title  string
	Format string
	Size   int
}

// Decoder synthesizes interleaved stereo 16-bit PCM from a loaded module.
//
// The lifecycle mirrors a tracker player context: Load, Start, PlayBuffer
// repeatedly, then Stop, Release and Close, each exactly once.
type Decoder interface {
	// Load reads and parses the module at path
	Load(path string) error

	// Start prepares the player at the given output rate
	Start(sampleRate int) error

	// SetVolume sets master volume (0-100). Safe to call during PlayBuffer.
	SetVolume(volume int)

	// Volume returns the master volume
	Volume() int

	// PlayBuffer fills out with little-endian stereo 16-bit frames and returns
	// the number of bytes written. It returns io.EOF once the song has ended.
	PlayBuffer(out []byte) (int, error)

	// Rewind restarts playback from the first order
	Rewind() error

	// Info returns metadata for the loaded module
	Info() ModuleInfo

	// Stop ends the player started by Start
	Stop() error

	// Release frees the loaded module
	Release() error

	// Close frees the decoder
	Close() error
}
