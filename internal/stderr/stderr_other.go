//go:build !unix

// Package stderr is a no-op where audio libraries do not write to fd 2.
package stderr

import "os"

// Capture is a no-op on this platform.
type Capture struct{}

// Start returns a no-op capture.
func Start() (*Capture, error) {
	return &Capture{}, nil
}

// Lines returns nil: nothing is ever captured.
func (c *Capture) Lines() <-chan string { return nil }

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op.
func (c *Capture) Stop() {}
