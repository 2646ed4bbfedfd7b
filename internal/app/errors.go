// ABOUTME: Error taxonomy for the playback orchestration
// ABOUTME: Usage, allocation, load and device errors with exit code mapping
package app

import (
	"errors"
	"fmt"
)

// ErrUsage is returned when the command line does not name exactly one module
var ErrUsage = errors.New("usage: expected exactly one module filename")

// AllocationError reports a decoder context that could not be created
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	if e.Err == nil {
		return "failed to allocate decoder context"
	}
	return fmt.Sprintf("failed to allocate decoder context: %v", e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// LoadError reports a module that could not be read or parsed
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load module %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DeviceError reports an output device that could not be initialized or started
type DeviceError struct {
	Backend string
	Err     error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Backend, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ExitCode maps a Run result to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// UserMessage returns the console line printed for err
func UserMessage(err error) string {
	var allocErr *AllocationError
	var loadErr *LoadError
	var devErr *DeviceError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &loadErr):
		return "Error loading module file."
	case errors.As(err, &devErr):
		return "Error initializing playback device."
	case errors.As(err, &allocErr):
		return "Error creating decoder context."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
