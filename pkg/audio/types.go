// ABOUTME: Audio type definitions
// ABOUTME: Defines the playback format and 16-bit sample helpers
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// Fixed playback format
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultBitDepth   = 16

	// DefaultVolume is the initial master volume (0-100)
	DefaultVolume = 50

	MaxVolume = 100
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns the 44.1kHz stereo 16-bit format used for playback
func DefaultFormat() Format {
	return Format{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// BytesPerSample returns the size of one sample of one channel
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

// BytesPerFrame returns the size of one interleaved frame
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BytesPerSample()
}

// FramesToDuration converts a frame count to wall-clock playback time
func (f Format) FramesToDuration(frames uint64) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// ClampVolume limits volume to 0-100
func ClampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// ScaleSample16 applies a 0-100 volume to a 16-bit sample with clipping protection
func ScaleSample16(sample int16, volume int) int16 {
	scaled := int32(sample) * int32(volume) / MaxVolume
	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}

// PutSamples16 writes samples as little-endian 16-bit PCM into dst and
// returns the number of bytes written
func PutSamples16(dst []byte, samples []int16) int {
	n := len(samples)
	if limit := len(dst) / 2; n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(samples[i]))
	}
	return n * 2
}

// Samples16 reads little-endian 16-bit PCM from src into dst and returns the
// number of samples read
func Samples16(dst []int16, src []byte) int {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return n
}
