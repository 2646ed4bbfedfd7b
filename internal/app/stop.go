// ABOUTME: Stop signal sources for the playback loop
// ABOUTME: Turns a line of input into a channel close
package app

import (
	"bufio"
	"io"
)

// WaitForLine returns a channel closed after r yields one line or ends. The
// reading goroutine exits with it.
func WaitForLine(r io.Reader) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		reader := bufio.NewReader(r)
		_, _ = reader.ReadString('\n')
	}()
	return done
}
