// ABOUTME: Tests for the MOD/S3M decoder
// ABOUTME: Tests format sniffing, lifecycle errors and PCM output with a fake synth
package decode

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/chriskillpack/modplayer"
	"github.com/modbridge/modbridge/pkg/audio"
)

// fakeSynth produces a constant sample for a fixed number of frames
type fakeSynth struct {
	value     int16
	remaining int
	stopped   bool
}

func (s *fakeSynth) GenerateAudio(out []int16) int {
	frames := len(out) / 2
	if frames > s.remaining {
		frames = s.remaining
	}
	for i := 0; i < frames*2; i++ {
		out[i] = s.value
	}
	s.remaining -= frames
	return frames
}

func (s *fakeSynth) IsPlaying() bool {
	return s.remaining > 0 && !s.stopped
}

// newStartedDecoder returns a decoder driving synths built by the returned counter
func newStartedDecoder(t *testing.T, value int16, frames int) (*ModDecoder, *int) {
	t.Helper()

	builds := 0
	d := NewModDecoder()
	d.song = &modplayer.Song{}
	d.newSynth = func(song *modplayer.Song, sampleRate int) (synth, func(), error) {
		builds++
		s := &fakeSynth{value: value, remaining: frames}
		return s, func() { s.stopped = true }, nil
	}

	if err := d.Start(44100); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return d, &builds
}

func TestDetectFormat(t *testing.T) {
	mod := make([]byte, 1084)
	copy(mod[1080:], "M.K.")

	mod10 := make([]byte, 1084)
	copy(mod10[1080:], "10CH")

	s3m := make([]byte, 96)
	copy(s3m[44:], "SCRM")

	tests := []struct {
		name     string
		path     string
		data     []byte
		expected string
		wantErr  bool
	}{
		{"mod signature", "song.bin", mod, FormatMOD, false},
		{"mod 10 channel signature", "song.bin", mod10, FormatMOD, false},
		{"s3m signature", "song.bin", s3m, FormatS3M, false},
		{"signature beats extension", "song.mod", s3m, FormatS3M, false},
		{"mod extension fallback", "song.MOD", []byte("short"), FormatMOD, false},
		{"s3m extension fallback", "song.s3m", []byte("short"), FormatS3M, false},
		{"unknown", "song.xm", []byte("short"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := DetectFormat(tt.path, tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, format)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	d := NewModDecoder()

	err := d.Load(filepath.Join(t.TempDir(), "missing.mod"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not a module"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewModDecoder()
	err := d.Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestStartWithoutModule(t *testing.T) {
	d := NewModDecoder()

	if err := d.Start(44100); !errors.Is(err, ErrNoModule) {
		t.Errorf("expected ErrNoModule, got %v", err)
	}
}

func TestPlayBufferBeforeStart(t *testing.T) {
	d := NewModDecoder()

	n, err := d.PlayBuffer(make([]byte, 16))
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 bytes, got %d", n)
	}
}

func TestPlayBufferFillsRequest(t *testing.T) {
	d, _ := newStartedDecoder(t, 1000, 1000)

	out := make([]byte, 64*4)
	n, err := d.PlayBuffer(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(out) {
		t.Errorf("expected %d bytes, got %d", len(out), n)
	}

	samples := make([]int16, len(out)/2)
	audio.Samples16(samples, out)
	for i, s := range samples {
		if s != 1000 {
			t.Fatalf("sample %d: expected 1000, got %d", i, s)
		}
	}
}

func TestPlayBufferAppliesVolume(t *testing.T) {
	d, _ := newStartedDecoder(t, 1000, 1000)
	d.SetVolume(50)

	out := make([]byte, 8*4)
	if _, err := d.PlayBuffer(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	samples := make([]int16, len(out)/2)
	audio.Samples16(samples, out)
	if samples[0] != 500 {
		t.Errorf("expected 500, got %d", samples[0])
	}
}

func TestPlayBufferEndOfSong(t *testing.T) {
	d, _ := newStartedDecoder(t, 1, 10)

	out := make([]byte, 16*4)
	n, err := d.PlayBuffer(out)
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if n != 10*4 {
		t.Errorf("expected %d bytes before end, got %d", 10*4, n)
	}

	n, err = d.PlayBuffer(out)
	if err != io.EOF || n != 0 {
		t.Errorf("expected (0, io.EOF) after end, got (%d, %v)", n, err)
	}
}

func TestRewind(t *testing.T) {
	d, builds := newStartedDecoder(t, 1, 4)

	out := make([]byte, 4*4)
	if _, err := d.PlayBuffer(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := d.Rewind(); err != nil {
		t.Fatalf("Rewind failed: %v", err)
	}
	if *builds != 2 {
		t.Errorf("expected player to be rebuilt, got %d builds", *builds)
	}

	n, err := d.PlayBuffer(out)
	if err != nil || n != len(out) {
		t.Errorf("expected full buffer after rewind, got (%d, %v)", n, err)
	}
}

func TestVolumeClamp(t *testing.T) {
	d := NewModDecoder()

	if d.Volume() != 100 {
		t.Errorf("expected default volume 100, got %d", d.Volume())
	}

	d.SetVolume(150)
	if d.Volume() != 100 {
		t.Errorf("expected 100, got %d", d.Volume())
	}

	d.SetVolume(-5)
	if d.Volume() != 0 {
		t.Errorf("expected 0, got %d", d.Volume())
	}
}

func TestTeardownSequence(t *testing.T) {
	d, _ := newStartedDecoder(t, 1, 100)

	if err := d.Release(); err == nil {
		t.Error("expected error releasing module while player runs")
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := d.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Close is idempotent
	if err := d.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := d.Load("song.mod"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestModDecoderImplementsDecoder(t *testing.T) {
	var _ Decoder = (*ModDecoder)(nil)
}
