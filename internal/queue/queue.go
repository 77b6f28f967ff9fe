// Package queue provides an ordered collection of items with a single
// "current" cursor.
package queue

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoNextItem is returned when the cursor is on the last item.
	ErrNoNextItem = errors.New("no next item")
	// ErrNoPreviousItem is returned when the cursor is on the first item.
	ErrNoPreviousItem = errors.New("no previous item")
	// ErrInvalidIndex matches every *IndexError.
	ErrInvalidIndex = errors.New("invalid index")
)

// IndexError reports a disallowed or out-of-range position.
type IndexError struct {
	Index  int
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("invalid index %d: %s", e.Index, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidIndex) hold.
func (e *IndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}

// Queue holds items in insertion order plus a cursor on the current one.
//
// The cursor defaults to 0 and stays meaningful on an empty queue: the first
// item added becomes current. It follows the identity of the current item, so
// removing or moving items before it renumbers it.
//
// A Queue is not safe for concurrent use.
type Queue[T any] struct {
	items        []T
	currentIndex int
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{items: make([]T, 0)}
}

// Items returns a copy of all items.
func (q *Queue[T]) Items() []T {
	result := make([]T, len(q.items))
	copy(result, q.items)
	return result
}

// Len returns the number of items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// CurrentIndex returns the cursor.
func (q *Queue[T]) CurrentIndex() int {
	return q.currentIndex
}

// Current returns the current item; ok is false on an empty queue.
func (q *Queue[T]) Current() (item T, ok bool) {
	if q.currentIndex < 0 || q.currentIndex >= len(q.items) {
		return item, false
	}
	return q.items[q.currentIndex], true
}

// PreviousItems returns the items strictly before the cursor.
func (q *Queue[T]) PreviousItems() []T {
	end := min(q.currentIndex, len(q.items))
	result := make([]T, end)
	copy(result, q.items[:end])
	return result
}

// NextItems returns the items strictly after the cursor.
func (q *Queue[T]) NextItems() []T {
	start := q.currentIndex + 1
	if start >= len(q.items) {
		return []T{}
	}
	result := make([]T, len(q.items)-start)
	copy(result, q.items[start:])
	return result
}

// Add appends item without moving the cursor.
func (q *Queue[T]) Add(item T) {
	q.items = append(q.items, item)
}

// AddItems appends items without moving the cursor.
func (q *Queue[T]) AddItems(items []T) {
	q.items = append(q.items, items...)
}

// Next advances the cursor and returns the new current item.
func (q *Queue[T]) Next() (T, error) {
	var zero T
	next := q.currentIndex + 1
	if next >= len(q.items) {
		return zero, ErrNoNextItem
	}
	q.currentIndex = next
	return q.items[next], nil
}

// Previous moves the cursor back and returns the new current item.
func (q *Queue[T]) Previous() (T, error) {
	var zero T
	prev := q.currentIndex - 1
	if prev < 0 || prev >= len(q.items) {
		return zero, ErrNoPreviousItem
	}
	q.currentIndex = prev
	return q.items[prev], nil
}

// Jump moves the cursor to index and returns the item there. Jumping to the
// current index is rejected.
func (q *Queue[T]) Jump(index int) (T, error) {
	var zero T
	if index == q.currentIndex {
		return zero, &IndexError{Index: index, Reason: "cannot jump to the current item"}
	}
	if err := q.checkBounds(index); err != nil {
		return zero, err
	}
	q.currentIndex = index
	return q.items[index], nil
}

// Move takes the item at from and reinserts it at to, keeping the relative
// order of the others. The current item cannot be moved.
func (q *Queue[T]) Move(from, to int) error {
	if from == q.currentIndex {
		return &IndexError{Index: from, Reason: "cannot move the current item"}
	}
	if err := q.checkBounds(from); err != nil {
		return err
	}
	if err := q.checkBounds(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	moved := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	q.items = append(q.items[:to], append([]T{moved}, q.items[to:]...)...)

	switch {
	case from < q.currentIndex && to >= q.currentIndex:
		q.currentIndex--
	case from > q.currentIndex && to <= q.currentIndex:
		q.currentIndex++
	}
	return nil
}

// Remove deletes the item at index. The current item cannot be removed.
func (q *Queue[T]) Remove(index int) (T, error) {
	var zero T
	if index == q.currentIndex {
		return zero, &IndexError{Index: index, Reason: "cannot remove the current item"}
	}
	if err := q.checkBounds(index); err != nil {
		return zero, err
	}

	removed := q.items[index]
	q.items = append(q.items[:index], q.items[index+1:]...)
	if index < q.currentIndex {
		q.currentIndex--
	}
	return removed, nil
}

// RemoveUpcomingItems drops every item after the cursor.
func (q *Queue[T]) RemoveUpcomingItems() {
	if q.currentIndex+1 >= len(q.items) {
		return
	}
	clear(q.items[q.currentIndex+1:])
	q.items = q.items[:q.currentIndex+1]
}

// RemovePreviousItems drops every item before the cursor; the current item
// becomes index 0.
func (q *Queue[T]) RemovePreviousItems() {
	if q.currentIndex <= 0 {
		return
	}
	end := min(q.currentIndex, len(q.items))
	q.items = append(q.items[:0], q.items[end:]...)
	q.currentIndex = 0
}

// Clear removes every item and resets the cursor.
func (q *Queue[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
	q.currentIndex = 0
}

// Replace swaps the contents for items and resets the cursor.
func (q *Queue[T]) Replace(items []T) {
	q.items = append(make([]T, 0, len(items)), items...)
	q.currentIndex = 0
}

// SetCurrentIndex places the cursor without the jump restrictions. Used when
// restoring a saved queue.
func (q *Queue[T]) SetCurrentIndex(index int) error {
	if len(q.items) == 0 && index == 0 {
		q.currentIndex = 0
		return nil
	}
	if err := q.checkBounds(index); err != nil {
		return err
	}
	q.currentIndex = index
	return nil
}

func (q *Queue[T]) checkBounds(index int) error {
	if index < 0 || index >= len(q.items) {
		return &IndexError{
			Index:  index,
			Reason: fmt.Sprintf("out of range [0, %d)", len(q.items)),
		}
	}
	return nil
}
