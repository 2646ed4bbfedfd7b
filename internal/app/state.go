// ABOUTME: Playback session states
// ABOUTME: Linear state sequence from startup to shutdown
package app

// State is a step of the playback sequence
type State int

const (
	StateUninitialized State = iota
	StateDecoderCreated
	StateModuleLoaded
	StateDecoderStarted
	StateDeviceReady
	StatePlaying
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDecoderCreated:
		return "decoder-created"
	case StateModuleLoaded:
		return "module-loaded"
	case StateDecoderStarted:
		return "decoder-started"
	case StateDeviceReady:
		return "device-ready"
	case StatePlaying:
		return "playing"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
