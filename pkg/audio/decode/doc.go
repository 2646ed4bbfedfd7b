// ABOUTME: Tracker module decoder package
// ABOUTME: Provides the Decoder interface and a MOD/S3M implementation
// Package decode turns tracker modules into PCM.
//
// Supports: ProTracker-style MOD (4/6/8 channel tags) and Scream Tracker 3 S3M,
// synthesized by github.com/chriskillpack/modplayer.
//
// Output is always interleaved stereo, signed 16-bit little-endian.
//
// Example:
//
//	dec := decode.NewModDecoder()
//	err := dec.Load("song.mod")
//	err = dec.Start(44100)
//	n, err := dec.PlayBuffer(buf)
package decode
