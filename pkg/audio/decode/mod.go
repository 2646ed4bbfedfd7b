// ABOUTME: MOD and S3M tracker module decoder
// ABOUTME: Wraps modplayer with format sniffing, software volume and byte output
package decode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/chriskillpack/modplayer"
	"github.com/modbridge/modbridge/pkg/audio"
)

const (
	FormatMOD = "MOD"
	FormatS3M = "S3M"

	// Offsets of the format signatures inside the file
	modTagOffset = 1080
	s3mTagOffset = 44
)

var modTags = []string{"M.K.", "M!K!", "M&K!", "FLT4", "FLT8", "4CHN", "6CHN", "8CHN", "OKTA", "CD81"}

// synth is the subset of modplayer.Player the decoder drives
type synth interface {
	GenerateAudio(out []int16) int
	IsPlaying() bool
}

// newSynthFunc builds a player for song and returns it with its stop function
type newSynthFunc func(song *modplayer.Song, sampleRate int) (synth, func(), error)

// ModDecoder decodes MOD and S3M modules
type ModDecoder struct {
	info       ModuleInfo
	song       *modplayer.Song
	sampleRate int
	player     synth
	stop       func()
	newSynth   newSynthFunc
	scratch    []int16
	volume     atomic.Int32
	closed     bool
}

// NewModDecoder creates a decoder context with volume at 100
func NewModDecoder() *ModDecoder {
	d := &ModDecoder{
		newSynth: newModplayerSynth,
	}
	d.volume.Store(audio.MaxVolume)
	return d
}

// New creates a decoder context. It matches the constructor signature the
// orchestration expects.
func New() (Decoder, error) {
	return NewModDecoder(), nil
}

func newModplayerSynth(song *modplayer.Song, sampleRate int) (synth, func(), error) {
	p, err := modplayer.NewPlayer(song, uint(sampleRate))
	if err != nil {
		return nil, nil, err
	}
	return p, func() { p.Stop() }, nil
}

// Load reads the module file and parses it
func (d *ModDecoder) Load(path string) error {
	if d.closed {
		return ErrClosed
	}
	if d.song != nil {
		return ErrAlreadyLoaded
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read module file: %w", err)
	}

	format, err := DetectFormat(path, data)
	if err != nil {
		return err
	}

	var song *modplayer.Song
	switch format {
	case FormatMOD:
		song, err = modplayer.NewMODSongFromBytes(data)
	case FormatS3M:
		song, err = modplayer.NewS3MSongFromBytes(data)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s module: %w", format, err)
	}

	filename := filepath.Base(path)
	d.song = song
	d.info = ModuleInfo{
		Path:   path,
		Title:  strings.TrimSuffix(filename, filepath.Ext(filename)),
		Format: format,
		Size:   len(data),
	}

	return nil
}

// DetectFormat identifies the module type from its signature, falling back to
// the file extension for files too short to carry one
func DetectFormat(path string, data []byte) (string, error) {
	if len(data) >= s3mTagOffset+4 && bytes.Equal(data[s3mTagOffset:s3mTagOffset+4], []byte("SCRM")) {
		return FormatS3M, nil
	}

	if len(data) >= modTagOffset+4 && isMODTag(data[modTagOffset:modTagOffset+4]) {
		return FormatMOD, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mod":
		return FormatMOD, nil
	case ".s3m":
		return FormatS3M, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

func isMODTag(tag []byte) bool {
	s := string(tag)
	for _, t := range modTags {
		if s == t {
			return true
		}
	}

	// "xxCH" / "xxCN" for 10+ channel modules
	if (s[2:] == "CH" || s[2:] == "CN") && isDigit(s[0]) && isDigit(s[1]) {
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Start creates the player at sampleRate
func (d *ModDecoder) Start(sampleRate int) error {
	if d.closed {
		return ErrClosed
	}
	if d.song == nil {
		return ErrNoModule
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	player, stop, err := d.newSynth(d.song, sampleRate)
	if err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	d.player = player
	d.stop = stop
	d.sampleRate = sampleRate
	return nil
}

// SetVolume sets the master volume (0-100)
func (d *ModDecoder) SetVolume(volume int) {
	d.volume.Store(int32(audio.ClampVolume(volume)))
}

// Volume returns the master volume
func (d *ModDecoder) Volume() int {
	return int(d.volume.Load())
}

// PlayBuffer synthesizes len(out)/4 frames into out
func (d *ModDecoder) PlayBuffer(out []byte) (int, error) {
	if d.player == nil {
		return 0, ErrNotStarted
	}

	frames := len(out) / (audio.DefaultChannels * 2)
	samples := frames * audio.DefaultChannels
	if cap(d.scratch) < samples {
		d.scratch = make([]int16, samples)
	}
	scratch := d.scratch[:samples]

	volume := d.Volume()
	filled := 0
	for filled < frames && d.player.IsPlaying() {
		n := d.player.GenerateAudio(scratch[filled*audio.DefaultChannels:])
		if n <= 0 {
			break
		}
		filled += n
	}

	if filled > frames {
		filled = frames
	}
	written := scratch[:filled*audio.DefaultChannels]
	if volume != audio.MaxVolume {
		for i, s := range written {
			written[i] = audio.ScaleSample16(s, volume)
		}
	}
	n := audio.PutSamples16(out, written)

	if filled < frames && !d.player.IsPlaying() {
		return n, io.EOF
	}
	return n, nil
}

// Rewind restarts the song from the beginning
func (d *ModDecoder) Rewind() error {
	if d.player == nil {
		return ErrNotStarted
	}
	if d.stop != nil {
		d.stop()
	}

	player, stop, err := d.newSynth(d.song, d.sampleRate)
	if err != nil {
		d.player = nil
		d.stop = nil
		return fmt.Errorf("failed to restart player: %w", err)
	}
	d.player = player
	d.stop = stop
	return nil
}

// Info returns metadata for the loaded module
func (d *ModDecoder) Info() ModuleInfo {
	return d.info
}

// Stop ends the player
func (d *ModDecoder) Stop() error {
	if d.player == nil {
		return nil
	}
	if d.stop != nil {
		d.stop()
	}
	d.player = nil
	d.stop = nil
	return nil
}

// Release frees the loaded module
func (d *ModDecoder) Release() error {
	if d.player != nil {
		return fmt.Errorf("cannot release module while player is running")
	}
	d.song = nil
	d.info = ModuleInfo{}
	return nil
}

// Close frees the decoder context
func (d *ModDecoder) Close() error {
	if d.closed {
		return nil
	}
	if err := d.Stop(); err != nil {
		return err
	}
	if err := d.Release(); err != nil {
		return err
	}
	d.scratch = nil
	d.closed = true
	return nil
}
