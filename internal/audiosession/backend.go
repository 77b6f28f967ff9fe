package audiosession

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Backend is the output device a Session drives.
type Backend interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
	Close()
}

type speakerBackend struct{}

func (speakerBackend) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerBackend) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerBackend) Clear()                  { speaker.Clear() }
func (speakerBackend) Lock()                   { speaker.Lock() }
func (speakerBackend) Unlock()                 { speaker.Unlock() }
func (speakerBackend) Close()                  { speaker.Close() }

// MemoryBackend is a Backend without a device. Audio only advances when Pull
// is called.
type MemoryBackend struct {
	mu      sync.Mutex
	mixer   beep.Mixer
	inits   int
	rate    beep.SampleRate
	buffer  int
	closed  bool
	initErr error
}

// NewMemoryBackend creates an idle memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Init(rate beep.SampleRate, bufferSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.inits++
	m.rate = rate
	m.buffer = bufferSize
	m.closed = false
	return nil
}

func (m *MemoryBackend) Play(s ...beep.Streamer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Add(s...)
}

func (m *MemoryBackend) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Clear()
}

func (m *MemoryBackend) Lock()   { m.mu.Lock() }
func (m *MemoryBackend) Unlock() { m.mu.Unlock() }

func (m *MemoryBackend) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Pull renders n samples from the mix, as the device would.
func (m *MemoryBackend) Pull(n int) {
	buf := make([][2]float64, n)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Stream(buf)
}

// Playing returns the number of streamers in the mix.
func (m *MemoryBackend) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

// SetInitError makes the next Init calls fail.
func (m *MemoryBackend) SetInitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
}

// Inits returns how many times the device was opened.
func (m *MemoryBackend) Inits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inits
}

// BufferSize returns the buffer length passed to the last Init.
func (m *MemoryBackend) BufferSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer
}

// Closed reports whether Close was called since the last Init.
func (m *MemoryBackend) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Backend = (*MemoryBackend)(nil)
