package event

import "sync"

// Subscription groups registrations across buses so a listener can release
// them all at once.
type Subscription struct {
	mu      sync.Mutex
	cancels []func()
	closed  bool
}

// On registers fn on bus and ties the registration to s.
// Registering on a closed Subscription is a no-op.
func On[T any](s *Subscription, bus *Bus[T], fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	tok := bus.Subscribe(fn)
	s.cancels = append(s.cancels, func() { bus.Unsubscribe(tok) })
}

// Close releases every registration. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.closed = true
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
