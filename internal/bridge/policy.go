// ABOUTME: End-of-track policy for a playback session
// ABOUTME: Parses and names the stop, loop and silence behaviours
package bridge

import (
	"fmt"
	"strings"
)

// EndPolicy decides what the session does when the decoder reaches the end
// of the song
type EndPolicy int

const (
	// EndSilence fills the stream with silence until the user stops
	EndSilence EndPolicy = iota
	// EndLoop restarts the song from the beginning
	EndLoop
	// EndStop fills silence and signals the session as finished
	EndStop
)

func (p EndPolicy) String() string {
	switch p {
	case EndSilence:
		return "silence"
	case EndLoop:
		return "loop"
	case EndStop:
		return "stop"
	default:
		return fmt.Sprintf("EndPolicy(%d)", int(p))
	}
}

// ParseEndPolicy parses "stop", "loop" or "silence"
func ParseEndPolicy(s string) (EndPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silence", "":
		return EndSilence, nil
	case "loop":
		return EndLoop, nil
	case "stop":
		return EndStop, nil
	default:
		return EndSilence, fmt.Errorf("invalid end-of-track policy %q (valid: stop, loop, silence)", s)
	}
}
