// Package playback composes the player state machine with a queue of items.
package playback

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/player"
	"github.com/llehouerou/cadence/internal/queue"
)

var errNilItem = errors.Wrap(item.ErrInvalidSourceLocator, "nil item")

// QueuedPlayer loads queue items through a player and advances on
// completion.
type QueuedPlayer struct {
	log    zerolog.Logger
	player *player.Player
	events *Events
	subs   event.Subscription

	mu          sync.Mutex
	queue       *queue.Queue[*item.AudioItem]
	autoAdvance bool
	closed      bool
}

// Option configures a QueuedPlayer.
type Option func(*QueuedPlayer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(q *QueuedPlayer) { q.log = l }
}

// WithAutoAdvance sets whether a completed item moves to the next one.
// Defaults to true.
func WithAutoAdvance(on bool) Option {
	return func(q *QueuedPlayer) { q.autoAdvance = on }
}

// New wraps p. The QueuedPlayer owns p from now on: Close closes it.
func New(p *player.Player, opts ...Option) *QueuedPlayer {
	q := &QueuedPlayer{
		log:         zerolog.Nop(),
		player:      p,
		events:      newEvents(),
		queue:       queue.New[*item.AudioItem](),
		autoAdvance: true,
	}
	for _, opt := range opts {
		opt(q)
	}
	event.On(&q.subs, p.Events().ItemDidComplete, q.onItemDidComplete)
	return q
}

// Events returns the queue-level buses.
func (q *QueuedPlayer) Events() *Events { return q.events }

// Player returns the underlying state machine, for its events and reads.
func (q *QueuedPlayer) Player() *player.Player { return q.player }

// Add enqueues it. When the queue was empty, it becomes current and is
// loaded; otherwise playback is not interrupted.
func (q *QueuedPlayer) Add(it *item.AudioItem, playWhenReady bool) error {
	return q.AddItems([]*item.AudioItem{it}, playWhenReady)
}

// AddItems enqueues items with the same rule as Add.
func (q *QueuedPlayer) AddItems(items []*item.AudioItem, playWhenReady bool) error {
	if len(items) == 0 {
		return nil
	}
	for _, it := range items {
		if it == nil {
			return errNilItem
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	wasEmpty := q.queue.Len() == 0
	q.queue.AddItems(items)
	q.publishQueueLocked()
	if !wasEmpty {
		return nil
	}
	return q.loadCurrentLocked(nil, playWhenReady)
}

// Next moves to the next item and plays it. At the end of the queue it
// returns queue.ErrNoNextItem and leaves playback alone.
func (q *QueuedPlayer) Next() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev, _ := q.queue.Current()
	if _, err := q.queue.Next(); err != nil {
		return err
	}
	q.publishQueueLocked()
	return q.loadCurrentLocked(prev, true)
}

// Previous moves to the previous item and plays it.
func (q *QueuedPlayer) Previous() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev, _ := q.queue.Current()
	if _, err := q.queue.Previous(); err != nil {
		return err
	}
	q.publishQueueLocked()
	return q.loadCurrentLocked(prev, true)
}

// JumpToItem makes the item at index current and loads it.
func (q *QueuedPlayer) JumpToItem(index int, playWhenReady bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev, _ := q.queue.Current()
	if _, err := q.queue.Jump(index); err != nil {
		return err
	}
	q.publishQueueLocked()
	return q.loadCurrentLocked(prev, playWhenReady)
}

// RemoveItem removes the item at index. The current item cannot be removed.
func (q *QueuedPlayer) RemoveItem(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, err := q.queue.Remove(index); err != nil {
		return err
	}
	q.publishQueueLocked()
	return nil
}

// MoveItem moves the item at from to to. The current item cannot be moved.
func (q *QueuedPlayer) MoveItem(from, to int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.queue.Move(from, to); err != nil {
		return err
	}
	q.publishQueueLocked()
	return nil
}

// RemoveUpcomingItems drops every item after the current one.
func (q *QueuedPlayer) RemoveUpcomingItems() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue.RemoveUpcomingItems()
	q.publishQueueLocked()
}

// RemovePreviousItems drops every item before the current one.
func (q *QueuedPlayer) RemovePreviousItems() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue.RemovePreviousItems()
	q.publishQueueLocked()
}

// Clear stops playback and empties the queue.
func (q *QueuedPlayer) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev, hadCurrent := q.queue.Current()
	q.queue.Clear()
	q.player.Stop()
	q.publishQueueLocked()
	if hadCurrent {
		q.events.CurrentItemChange.Publish(CurrentItemChange{Previous: prev, Index: 0})
	}
}

// Replace swaps the queue for items and loads the first one. An empty items
// behaves like Clear.
func (q *QueuedPlayer) Replace(items []*item.AudioItem, playWhenReady bool) error {
	return q.Restore(items, 0, 0, playWhenReady)
}

// Restore swaps the queue for items, makes index current and loads it at
// position seconds.
func (q *QueuedPlayer) Restore(items []*item.AudioItem, index int, position float64, playWhenReady bool) error {
	for _, it := range items {
		if it == nil {
			return errNilItem
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(items) > 0 && (index < 0 || index >= len(items)) {
		return &queue.IndexError{Index: index, Reason: "restore index out of range"}
	}

	prev, _ := q.queue.Current()
	q.queue.Replace(items)
	if err := q.queue.SetCurrentIndex(index); err != nil {
		return err
	}
	q.publishQueueLocked()

	if len(items) == 0 {
		q.player.Stop()
		if prev != nil {
			q.events.CurrentItemChange.Publish(CurrentItemChange{Previous: prev})
		}
		return nil
	}

	var opts []player.LoadOption
	if position > 0 {
		opts = append(opts, player.WithInitialTime(position))
	}
	return q.loadCurrentLocked(prev, playWhenReady, opts...)
}

// Play resumes playback. After Stop, the current queue item is loaded
// again.
func (q *QueuedPlayer) Play() error {
	if q.player.CurrentItem() != nil {
		return q.player.Play()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queue.Current(); !ok {
		return player.ErrNoLoadedItem
	}
	return q.reloadCurrentLocked()
}

// Pause pauses playback.
func (q *QueuedPlayer) Pause() error { return q.player.Pause() }

// TogglePlaying toggles playback, reloading the current item after Stop.
func (q *QueuedPlayer) TogglePlaying() error {
	if q.player.CurrentItem() == nil {
		return q.Play()
	}
	return q.player.TogglePlaying()
}

// Stop stops playback. The queue is left unchanged.
func (q *QueuedPlayer) Stop() { q.player.Stop() }

// Seek moves the playhead of the current item.
func (q *QueuedPlayer) Seek(seconds float64) (uint64, error) {
	return q.player.Seek(seconds)
}

// SetVolume sets the output level.
func (q *QueuedPlayer) SetVolume(level float64) { q.player.SetVolume(level) }

// Volume returns the output level.
func (q *QueuedPlayer) Volume() float64 { return q.player.Volume() }

// State returns the player state.
func (q *QueuedPlayer) State() player.State { return q.player.State() }

// CurrentTime returns the playhead in seconds.
func (q *QueuedPlayer) CurrentTime() float64 { return q.player.CurrentTime() }

// Duration returns the current item duration in seconds.
func (q *QueuedPlayer) Duration() float64 { return q.player.Duration() }

// CurrentItem returns the queue's current item, or nil on an empty queue.
func (q *QueuedPlayer) CurrentItem() *item.AudioItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	cur, _ := q.queue.Current()
	return cur
}

// CurrentIndex returns the queue cursor.
func (q *QueuedPlayer) CurrentIndex() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.CurrentIndex()
}

// Items returns a copy of the queue.
func (q *QueuedPlayer) Items() []*item.AudioItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Items()
}

// NextItems returns the items after the current one.
func (q *QueuedPlayer) NextItems() []*item.AudioItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.NextItems()
}

// PreviousItems returns the items before the current one.
func (q *QueuedPlayer) PreviousItems() []*item.AudioItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.PreviousItems()
}

// AutoAdvance reports whether completions advance the queue.
func (q *QueuedPlayer) AutoAdvance() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.autoAdvance
}

// SetAutoAdvance enables or disables advancing on completion.
func (q *QueuedPlayer) SetAutoAdvance(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.autoAdvance = on
}

// Close releases the player.
func (q *QueuedPlayer) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.subs.Close()
	return q.player.Close()
}

func (q *QueuedPlayer) onItemDidComplete(e player.ItemDidComplete) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || !q.autoAdvance {
		return
	}
	cur, ok := q.queue.Current()
	if !ok || cur != e.Item {
		q.log.Debug().Msg("ignoring completion of non-current item")
		return
	}
	if _, err := q.queue.Next(); err != nil {
		q.log.Debug().Msg("end of queue")
		return
	}
	q.publishQueueLocked()
	if err := q.loadCurrentLocked(cur, true); err != nil {
		q.log.Warn().Err(err).Msg("auto-advance")
	}
}

func (q *QueuedPlayer) loadCurrentLocked(prev *item.AudioItem, playWhenReady bool, opts ...player.LoadOption) error {
	cur, ok := q.queue.Current()
	if !ok {
		return nil
	}
	q.events.CurrentItemChange.Publish(CurrentItemChange{
		Previous: prev,
		Current:  cur,
		Index:    q.queue.CurrentIndex(),
	})
	q.log.Debug().
		Int("index", q.queue.CurrentIndex()).
		Str("title", cur.DisplayTitle()).
		Msg("load current")
	return q.player.Load(cur, playWhenReady, opts...)
}

func (q *QueuedPlayer) reloadCurrentLocked() error {
	cur, _ := q.queue.Current()
	return q.player.Load(cur, true)
}

func (q *QueuedPlayer) publishQueueLocked() {
	q.events.QueueChange.Publish(QueueChange{
		Items: q.queue.Items(),
		Index: q.queue.CurrentIndex(),
	})
}
