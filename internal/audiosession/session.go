// Package audiosession owns the audio output device.
//
// The beep speaker is process-wide, so a Session is the one explicit handle to
// it: engines receive the Session they play through instead of touching the
// speaker package directly. Only one Session can be active at a time.
package audiosession

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"
)

// ErrBusy is returned by Activate when another Session holds the device.
var ErrBusy = errors.New("audio device held by another session")

// DefaultBufferMillis is the output buffer length when none is configured.
const DefaultBufferMillis = 100

var deviceHeld atomic.Bool

// Config sets up the output device.
type Config struct {
	// SampleRate fixes the device rate. Zero adopts the rate of the first
	// item played.
	SampleRate int
	// BufferMillis is the output buffer length.
	BufferMillis int
}

// Session is an explicit audio output context.
type Session struct {
	log       zerolog.Logger
	cfg       Config
	backend   Backend
	exclusive bool

	mu     sync.Mutex
	active bool
	rate   beep.SampleRate
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithBackend replaces the speaker, typically with a MemoryBackend in tests.
// Sessions on a custom backend do not claim the process-wide device.
func WithBackend(b Backend) Option {
	return func(s *Session) {
		s.backend = b
		s.exclusive = false
	}
}

// New creates an inactive session.
func New(cfg Config, opts ...Option) *Session {
	if cfg.BufferMillis <= 0 {
		cfg.BufferMillis = DefaultBufferMillis
	}
	s := &Session{
		log:       zerolog.Nop(),
		cfg:       cfg,
		backend:   speakerBackend{},
		exclusive: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate opens the device on first use and returns its sample rate. want is
// the rate of the item about to play; it is used when no rate is configured.
// Later calls return the established rate.
func (s *Session) Activate(want beep.SampleRate) (beep.SampleRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return s.rate, nil
	}

	rate := beep.SampleRate(s.cfg.SampleRate)
	if rate <= 0 {
		rate = want
	}
	if rate <= 0 {
		return 0, errors.Newf("invalid sample rate %d", rate)
	}

	if s.exclusive && !deviceHeld.CompareAndSwap(false, true) {
		return 0, ErrBusy
	}
	buffer := rate.N(time.Duration(s.cfg.BufferMillis) * time.Millisecond)
	if err := s.backend.Init(rate, buffer); err != nil {
		if s.exclusive {
			deviceHeld.Store(false)
		}
		return 0, errors.Wrap(err, "init speaker")
	}

	s.active = true
	s.rate = rate
	s.log.Info().Int("sample_rate", int(rate)).Int("buffer", buffer).Msg("audio session active")
	return rate, nil
}

// Active reports whether the device is open.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SampleRate returns the device rate, 0 while inactive.
func (s *Session) SampleRate() beep.SampleRate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Play adds streamers to the output mix.
func (s *Session) Play(st ...beep.Streamer) {
	s.backend.Play(st...)
}

// Lock blocks the output goroutine so streamer state can be changed safely.
func (s *Session) Lock() { s.backend.Lock() }

// Unlock releases Lock.
func (s *Session) Unlock() { s.backend.Unlock() }

// Deactivate clears the mix and closes the device.
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.backend.Clear()
	s.backend.Close()
	s.active = false
	s.rate = 0
	if s.exclusive {
		deviceHeld.Store(false)
	}
	s.log.Info().Msg("audio session inactive")
}
