package playback

import (
	"sync"

	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/player"
)

const eventBufferSize = 16

// Subscription mirrors the player and queue buses into buffered channels,
// for consumers that select on events instead of registering handlers.
// Sends never block: events are dropped when a buffer is full.
type Subscription struct {
	StateChanged <-chan player.StateChange
	Elapsed      <-chan player.SecondElapsed
	ItemChanged  <-chan CurrentItemChange
	QueueChanged <-chan QueueChange
	Failed       <-chan player.Fail
	Done         <-chan struct{}

	// Internal write channels
	stateCh   chan player.StateChange
	elapsedCh chan player.SecondElapsed
	itemCh    chan CurrentItemChange
	queueCh   chan QueueChange
	failCh    chan player.Fail
	doneCh    chan struct{}

	regs      event.Subscription
	closeOnce sync.Once
}

// newSubscription creates a subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:   make(chan player.StateChange, eventBufferSize),
		elapsedCh: make(chan player.SecondElapsed, eventBufferSize),
		itemCh:    make(chan CurrentItemChange, eventBufferSize),
		queueCh:   make(chan QueueChange, eventBufferSize),
		failCh:    make(chan player.Fail, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Elapsed = s.elapsedCh
	s.ItemChanged = s.itemCh
	s.QueueChanged = s.queueCh
	s.Failed = s.failCh
	s.Done = s.doneCh
	return s
}

// Subscribe creates a channel subscription. Release it with Close.
func (q *QueuedPlayer) Subscribe() *Subscription {
	s := newSubscription()
	pe := q.player.Events()
	event.On(&s.regs, pe.StateChange, func(e player.StateChange) { send(s.stateCh, e) })
	event.On(&s.regs, pe.SecondElapsed, func(e player.SecondElapsed) { send(s.elapsedCh, e) })
	event.On(&s.regs, pe.Fail, func(e player.Fail) { send(s.failCh, e) })
	event.On(&s.regs, q.events.CurrentItemChange, func(e CurrentItemChange) { send(s.itemCh, e) })
	event.On(&s.regs, q.events.QueueChange, func(e QueueChange) { send(s.queueCh, e) })
	return s
}

// Close unregisters from the buses and closes Done.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.regs.Close()
		close(s.doneCh)
	})
}

func send[T any](ch chan T, e T) {
	select {
	case ch <- e:
	default:
		// Drop if buffer full
	}
}
