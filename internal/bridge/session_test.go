// ABOUTME: Tests for the playback bridge callback
// ABOUTME: Tests unset handles, buffer sizing and end-of-track policies
package bridge

import (
	"errors"
	"io"
	"testing"

	"github.com/modbridge/modbridge/pkg/audio/decode"
)

// fakeDecoder fills buffers with a fixed byte for a limited number of bytes
type fakeDecoder struct {
	fill      byte
	total     int
	remaining int
	rewinds   int
	volume    int
	calls     int
	err       error
}

func newFakeDecoder(fill byte, frames int) *fakeDecoder {
	return &fakeDecoder{fill: fill, total: frames * 4, remaining: frames * 4, volume: 50}
}

func (d *fakeDecoder) Load(path string) error { return nil }
func (d *fakeDecoder) Start(sampleRate int) error { return nil }
func (d *fakeDecoder) SetVolume(volume int) { d.volume = volume }
func (d *fakeDecoder) Volume() int { return d.volume }
func (d *fakeDecoder) Info() decode.ModuleInfo { return decode.ModuleInfo{Title: "fake"} }
func (d *fakeDecoder) Stop() error { return nil }
func (d *fakeDecoder) Release() error { return nil }
func (d *fakeDecoder) Close() error { return nil }

func (d *fakeDecoder) PlayBuffer(out []byte) (int, error) {
	d.calls++
	if d.err != nil {
		return 0, d.err
	}
	n := len(out)
	if n > d.remaining {
		n = d.remaining
	}
	for i := 0; i < n; i++ {
		out[i] = d.fill
	}
	d.remaining -= n
	if n < len(out) {
		return n, io.EOF
	}
	return n, nil
}

func (d *fakeDecoder) Rewind() error {
	d.rewinds++
	d.remaining = d.total
	return nil
}

func filled(n int, b byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func TestDataCallbackUnsetHandle(t *testing.T) {
	tests := []struct {
		name     string
		userData any
	}{
		{"nil", nil},
		{"typed nil session", (*Session)(nil)},
		{"wrong type", "not a session"},
		{"session without decoder", &Session{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filled(64, 0xAA)

			DataCallback(tt.userData, out, nil, 16)

			for i, b := range out {
				if b != 0xAA {
					t.Fatalf("byte %d was written: %#x", i, b)
				}
			}
		})
	}
}

func TestDataCallbackWritesFourBytesPerFrame(t *testing.T) {
	for _, frames := range []uint32{0, 1, 17, 512} {
		dec := newFakeDecoder(0x11, 10000)
		s := NewSession(dec, EndSilence)

		out := filled(int(frames)*4+8, 0xAA)
		DataCallback(s, out, nil, frames)

		for i := 0; i < int(frames)*4; i++ {
			if out[i] != 0x11 {
				t.Fatalf("frames=%d: byte %d not written", frames, i)
			}
		}
		for i := int(frames) * 4; i < len(out); i++ {
			if out[i] != 0xAA {
				t.Fatalf("frames=%d: byte %d beyond request was written", frames, i)
			}
		}
		if s.Frames() != uint64(frames) {
			t.Errorf("frames=%d: expected frame counter %d, got %d", frames, frames, s.Frames())
		}
	}
}

func TestDataCallbackIgnoresInput(t *testing.T) {
	dec := newFakeDecoder(0x22, 100)
	s := NewSession(dec, EndSilence)

	input := filled(16, 0x33)
	out := make([]byte, 16)
	DataCallback(s, out, input, 4)

	for i, b := range input {
		if b != 0x33 {
			t.Fatalf("input byte %d modified", i)
		}
	}
}

func TestFillClampsToOutput(t *testing.T) {
	dec := newFakeDecoder(0x11, 100)
	s := NewSession(dec, EndSilence)

	out := make([]byte, 10)
	s.Fill(out, 8)

	for i := 0; i < 8; i++ {
		if out[i] != 0x11 {
			t.Errorf("byte %d not written", i)
		}
	}
	if out[8] != 0 || out[9] != 0 {
		t.Error("partial frame was written")
	}
}

func TestEndSilence(t *testing.T) {
	dec := newFakeDecoder(0x11, 2)
	s := NewSession(dec, EndSilence)

	out := filled(16, 0xAA)
	s.Fill(out, 4)

	for i := 0; i < 8; i++ {
		if out[i] != 0x11 {
			t.Errorf("byte %d: expected decoded data, got %#x", i, out[i])
		}
	}
	for i := 8; i < 16; i++ {
		if out[i] != 0 {
			t.Errorf("byte %d: expected silence, got %#x", i, out[i])
		}
	}
	if !s.Ended() {
		t.Error("expected session to be ended")
	}

	select {
	case <-s.Done():
		t.Error("silence policy must not finish the session")
	default:
	}

	calls := dec.calls
	out = filled(16, 0xAA)
	s.Fill(out, 4)
	if dec.calls != calls {
		t.Error("decoder called after end of song")
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d: expected silence, got %#x", i, b)
		}
	}
}

func TestEndLoop(t *testing.T) {
	dec := newFakeDecoder(0x11, 3)
	s := NewSession(dec, EndLoop)

	out := make([]byte, 10*4)
	s.Fill(out, 10)

	for i, b := range out {
		if b != 0x11 {
			t.Fatalf("byte %d: expected looped data, got %#x", i, b)
		}
	}
	if dec.rewinds != 3 {
		t.Errorf("expected 3 rewinds, got %d", dec.rewinds)
	}
	if s.Ended() {
		t.Error("loop policy must not end the session")
	}
}

func TestEndLoopEmptySong(t *testing.T) {
	dec := newFakeDecoder(0x11, 0)
	s := NewSession(dec, EndLoop)

	out := filled(16, 0xAA)
	s.Fill(out, 4)

	if dec.rewinds != 1 {
		t.Errorf("expected a single rewind for an empty song, got %d", dec.rewinds)
	}
	if !s.Ended() {
		t.Error("expected session to end when the song produces nothing")
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d: expected silence, got %#x", i, b)
		}
	}
}

func TestEndStop(t *testing.T) {
	dec := newFakeDecoder(0x11, 1)
	s := NewSession(dec, EndStop)

	out := make([]byte, 16)
	s.Fill(out, 4)

	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed under stop policy")
	}

	// Further fills must not close Done again
	s.Fill(out, 4)
	s.Fill(out, 4)
}

func TestDecoderErrorRecorded(t *testing.T) {
	dec := newFakeDecoder(0x11, 100)
	dec.err = errors.New("synth failure")
	s := NewSession(dec, EndSilence)

	out := filled(16, 0xAA)
	s.Fill(out, 4)

	if s.Err() == nil || s.Err().Error() != "synth failure" {
		t.Errorf("expected recorded error, got %v", s.Err())
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d: expected silence after error, got %#x", i, b)
		}
	}
}

func TestEndOfSongIsNotAnError(t *testing.T) {
	dec := newFakeDecoder(0x11, 1)
	s := NewSession(dec, EndStop)

	s.Fill(make([]byte, 16), 4)

	if s.Err() != nil {
		t.Errorf("expected no error for end of song, got %v", s.Err())
	}
}

func TestSessionVolume(t *testing.T) {
	dec := newFakeDecoder(0, 1)
	s := NewSession(dec, EndSilence)

	s.SetVolume(80)
	if s.Volume() != 80 {
		t.Errorf("expected volume 80, got %d", s.Volume())
	}
	if dec.volume != 80 {
		t.Errorf("expected decoder volume 80, got %d", dec.volume)
	}
}

func TestSessionElapsed(t *testing.T) {
	dec := newFakeDecoder(0, 100000)
	s := NewSession(dec, EndSilence)

	s.Fill(make([]byte, 44100*4), 44100)

	if s.Elapsed().Seconds() != 1 {
		t.Errorf("expected 1s elapsed, got %v", s.Elapsed())
	}
	if s.ID == "" {
		t.Error("expected session ID")
	}
}
