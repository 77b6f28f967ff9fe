//go:build unix

// Package stderr captures output that C libraries (ALSA) write directly to
// file descriptor 2, bypassing Go's os.Stderr, so it does not corrupt the
// TUI layout.
package stderr

import (
	"bufio"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const bufferSize = 100

// Capture redirects fd 2 to a pipe until Stop.
type Capture struct {
	lines chan string
	orig  int
	r, w  *os.File
}

// Start begins capturing stderr output. Call it before the audio device is
// opened. On error the program can continue without capture.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "create pipe")
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, errors.Wrap(err, "dup stderr")
	}
	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, errors.Wrap(err, "redirect stderr")
	}

	c := &Capture{
		lines: make(chan string, bufferSize),
		orig:  orig,
		r:     r,
		w:     w,
	}
	go c.read()
	return c, nil
}

func (c *Capture) read() {
	defer close(c.lines)
	defer c.r.Close()
	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		default:
			// full, drop
		}
	}
}

// Lines receives captured lines. It is closed after Stop.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = unix.Write(c.orig, []byte(msg))
}

// Stop restores the original stderr.
func (c *Capture) Stop() {
	_ = unix.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = unix.Close(c.orig)
	c.w.Close()
}
