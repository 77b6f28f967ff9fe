// Package event provides a typed multi-listener publish/subscribe bus.
//
// Every event type gets its own Bus. Listeners register a handler and keep the
// returned Token; releasing the token is the listener's job, usually from its
// own teardown. Delivery is asynchronous and ordered per bus: events published
// on one Bus reach its handlers in publish order. Nothing is guaranteed across
// buses.
package event

import (
	"sync"

	"github.com/llehouerou/cadence/internal/serial"
)

// Token identifies a registration on a Bus.
type Token uint64

// Bus fans out events of type T to registered handlers.
//
// Handler panics are not recovered: they propagate on the dispatch goroutine.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers []registration[T]
	nextTok  Token

	dispatch serial.Queue
}

type registration[T any] struct {
	tok Token
	fn  func(T)
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns the token that removes it.
func (b *Bus[T]) Subscribe(fn func(T)) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextTok++
	b.handlers = append(b.handlers, registration[T]{tok: b.nextTok, fn: fn})
	return b.nextTok
}

// Unsubscribe removes the registration for tok. Unknown tokens are ignored.
func (b *Bus[T]) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.handlers {
		if r.tok == tok {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live registrations.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish queues e for delivery and returns immediately. Handlers see the
// registrations that are live when e is delivered, not when it is published.
func (b *Bus[T]) Publish(e T) {
	b.dispatch.Submit(func() { b.deliver(e) })
}

// Wait blocks until every event published so far has been delivered.
func (b *Bus[T]) Wait() {
	b.dispatch.Wait()
}

func (b *Bus[T]) deliver(e T) {
	b.mu.RLock()
	snapshot := make([]func(T), len(b.handlers))
	for i, r := range b.handlers {
		snapshot[i] = r.fn
	}
	b.mu.RUnlock()

	for _, fn := range snapshot {
		fn(e)
	}
}
