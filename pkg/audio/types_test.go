// ABOUTME: Tests for audio types
// ABOUTME: Tests format sizing, volume scaling and PCM byte conversion
package audio

import (
	"testing"
	"time"
)

func TestDefaultFormat(t *testing.T) {
	format := DefaultFormat()

	if format.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", format.SampleRate)
	}
	if format.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", format.Channels)
	}
	if format.BitDepth != 16 {
		t.Errorf("expected 16-bit, got %d", format.BitDepth)
	}
	if format.BytesPerFrame() != 4 {
		t.Errorf("expected 4 bytes per frame, got %d", format.BytesPerFrame())
	}
}

func TestFramesToDuration(t *testing.T) {
	format := DefaultFormat()

	if d := format.FramesToDuration(44100); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
	if d := format.FramesToDuration(22050); d != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", d)
	}
	if d := (Format{}).FramesToDuration(100); d != 0 {
		t.Errorf("expected 0 for zero sample rate, got %v", d)
	}
}

func TestClampVolume(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"negative", -10, 0},
		{"zero", 0, 0},
		{"mid", 50, 50},
		{"max", 100, 100},
		{"over", 150, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClampVolume(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestScaleSample16(t *testing.T) {
	tests := []struct {
		name     string
		sample   int16
		volume   int
		expected int16
	}{
		{"full volume", 1000, 100, 1000},
		{"half volume", 1000, 50, 500},
		{"half volume negative", -1000, 50, -500},
		{"silent", 32767, 0, 0},
		{"max", 32767, 100, 32767},
		{"min", -32768, 100, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScaleSample16(tt.sample, tt.volume)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestPutSamples16(t *testing.T) {
	samples := []int16{0x0102, -2}
	dst := make([]byte, 4)

	n := PutSamples16(dst, samples)
	if n != 4 {
		t.Fatalf("expected 4 bytes written, got %d", n)
	}

	expected := []byte{0x02, 0x01, 0xFE, 0xFF}
	for i := range expected {
		if dst[i] != expected[i] {
			t.Errorf("byte %d: expected %#x, got %#x", i, expected[i], dst[i])
		}
	}
}

func TestPutSamples16ShortDestination(t *testing.T) {
	samples := []int16{1, 2, 3}
	dst := make([]byte, 3)

	n := PutSamples16(dst, samples)
	if n != 2 {
		t.Errorf("expected 2 bytes written, got %d", n)
	}
}

func TestSamples16(t *testing.T) {
	src := []byte{0x02, 0x01, 0xFE, 0xFF}
	dst := make([]int16, 2)

	n := Samples16(dst, src)
	if n != 2 {
		t.Fatalf("expected 2 samples, got %d", n)
	}
	if dst[0] != 0x0102 {
		t.Errorf("expected %d, got %d", 0x0102, dst[0])
	}
	if dst[1] != -2 {
		t.Errorf("expected -2, got %d", dst[1])
	}
}
