package playback

import (
	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/item"
)

// CurrentItemChange is emitted when the queue cursor lands on a different
// item, or when the queue empties.
//
// Emitted by:
//   - Add/AddItems on an empty queue
//   - Next/Previous/JumpToItem
//   - auto-advance after a completion
//   - Replace, Restore and Clear
//
// NOT emitted by:
//   - RemoveItem/MoveItem: the current item never changes
//   - Play/Pause/Stop: playback state has its own event
type CurrentItemChange struct {
	Previous *item.AudioItem
	Current  *item.AudioItem
	Index    int
}

// QueueChange is emitted when the queue contents or cursor change.
type QueueChange struct {
	Items []*item.AudioItem
	Index int
}

// Events holds the queue-level buses. Playback events live on the player's
// Events.
type Events struct {
	CurrentItemChange *event.Bus[CurrentItemChange]
	QueueChange       *event.Bus[QueueChange]
}

func newEvents() *Events {
	return &Events{
		CurrentItemChange: event.NewBus[CurrentItemChange](),
		QueueChange:       event.NewBus[QueueChange](),
	}
}
