// ABOUTME: Reader adapter turning a data callback into a pull source
// ABOUTME: Shared by devices whose audio thread reads rather than being called back
package output

import (
	"io"
	"sync"
)

// puller invokes a DataProc for each read. The mutex is held across the
// callback so close waits for an in-flight invocation.
type puller struct {
	mu            sync.Mutex
	closed        bool
	data          DataProc
	userData      any
	bytesPerFrame int
}

func newPuller(config DeviceConfig) *puller {
	return &puller{
		data:          config.Data,
		userData:      config.UserData,
		bytesPerFrame: config.BytesPerFrame(),
	}
}

// Read fills whole frames of p from the callback. The buffer is zeroed first
// so a callback that writes nothing yields silence.
func (p *puller) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.EOF
	}

	frames := len(buf) / p.bytesPerFrame
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	out := buf[:frames*p.bytesPerFrame]
	clear(out)
	p.data(p.userData, out, nil, uint32(frames))
	return len(out), nil
}

// close stops further callbacks
func (p *puller) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
