// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the Format type and 16-bit PCM helpers
// Package audio provides the playback format and PCM helpers shared by the
// decoder and output packages.
//
// Playback always runs at 44.1kHz, stereo, signed 16-bit little-endian PCM.
//
// Example:
//
//	format := audio.DefaultFormat()
//	buf := make([]byte, 512*format.BytesPerFrame())
//
//	// Halve a sample
//	quieter := audio.ScaleSample16(sample, 50)
package audio
