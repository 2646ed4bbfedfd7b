// ABOUTME: Playback session pairing one decoder with one device stream
// ABOUTME: Fills device buffers from the decoder and applies the end-of-track policy
package bridge

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/modbridge/modbridge/pkg/audio"
	"github.com/modbridge/modbridge/pkg/audio/decode"
)

// Session is the user data handed to the output device. The orchestration
// owns the decoder; the device's audio thread only borrows it between device
// start and uninit.
type Session struct {
	ID string

	decoder decode.Decoder
	format  audio.Format
	policy  EndPolicy

	frames   atomic.Uint64
	ended    atomic.Bool
	err      atomic.Value
	finished chan struct{}
	once     sync.Once
}

type sessionErr struct{ err error }

// NewSession creates a session reading from decoder
func NewSession(decoder decode.Decoder, policy EndPolicy) *Session {
	return &Session{
		ID:       uuid.New().String(),
		decoder:  decoder,
		format:   audio.DefaultFormat(),
		policy:   policy,
		finished: make(chan struct{}),
	}
}

// DataCallback is the device data callback. userData must be the *Session
// attached at device init; anything else leaves output untouched.
func DataCallback(userData any, output, input []byte, frameCount uint32) {
	s, ok := userData.(*Session)
	if !ok || s == nil || s.decoder == nil {
		return
	}
	s.Fill(output, frameCount)
}

// Fill overwrites frameCount frames of output with decoded audio. It runs on
// the audio thread and must not block or allocate.
func (s *Session) Fill(output []byte, frameCount uint32) {
	bytesPerFrame := s.format.BytesPerFrame()
	n := int(frameCount) * bytesPerFrame
	if n > len(output) {
		n = len(output) - len(output)%bytesPerFrame
	}
	buf := output[:n]

	if s.ended.Load() {
		clear(buf)
		s.frames.Add(uint64(frameCount))
		return
	}

	written := 0
	rewound := false
	for written < n {
		m, err := s.decoder.PlayBuffer(buf[written:])
		written += m
		if m > 0 {
			rewound = false
		}

		if err == nil {
			if m == 0 {
				break
			}
			continue
		}

		if errors.Is(err, io.EOF) {
			if s.policy == EndLoop && !rewound {
				if rerr := s.decoder.Rewind(); rerr != nil {
					s.setErr(rerr)
					s.end()
					break
				}
				rewound = true
				continue
			}
			s.end()
			break
		}

		s.setErr(err)
		s.end()
		break
	}

	clear(buf[written:])
	s.frames.Add(uint64(frameCount))
}

func (s *Session) end() {
	s.ended.Store(true)
	if s.policy == EndStop {
		s.once.Do(func() { close(s.finished) })
	}
}

func (s *Session) setErr(err error) {
	s.err.CompareAndSwap(nil, sessionErr{err})
}

// Done is closed when the song ends under the stop policy
func (s *Session) Done() <-chan struct{} {
	return s.finished
}

// Ended reports whether the decoder has run out of song
func (s *Session) Ended() bool {
	return s.ended.Load()
}

// Err returns the first decoder error seen by the callback, ignoring end of song
func (s *Session) Err() error {
	if v, ok := s.err.Load().(sessionErr); ok {
		return v.err
	}
	return nil
}

// Policy returns the end-of-track policy
func (s *Session) Policy() EndPolicy {
	return s.policy
}

// Format returns the stream format
func (s *Session) Format() audio.Format {
	return s.format
}

// Frames returns the number of frames delivered to the device
func (s *Session) Frames() uint64 {
	return s.frames.Load()
}

// Elapsed returns playback time delivered to the device
func (s *Session) Elapsed() time.Duration {
	return s.format.FramesToDuration(s.Frames())
}

// SetVolume sets the decoder master volume (0-100)
func (s *Session) SetVolume(volume int) {
	s.decoder.SetVolume(volume)
}

// Volume returns the decoder master volume
func (s *Session) Volume() int {
	return s.decoder.Volume()
}

// Info returns the loaded module's metadata
func (s *Session) Info() decode.ModuleInfo {
	return s.decoder.Info()
}
