package player

import (
	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/item"
)

// StateChange is emitted when the public state changes. Previous never equals
// Current.
type StateChange struct {
	Previous State
	Current  State
}

// SecondElapsed is emitted on every periodic time tick of the engine.
type SecondElapsed struct {
	Seconds float64
}

// SeekEvent is emitted when a seek completes.
//
// Token matches the value returned by Player.Seek. Latest is false when a
// newer seek was issued before this one completed.
type SeekEvent struct {
	Token    uint64
	Seconds  int
	Finished bool
	Latest   bool
}

// UpdateDuration is emitted when the engine resolves the item duration.
type UpdateDuration struct {
	Seconds float64
}

// Fail is emitted for every engine failure. Item is the item that was loaded
// when the failure happened; on a failure before ready the player has already
// dropped it, so this is the only way to retry it.
type Fail struct {
	Err  error
	Item *item.AudioItem
}

// ItemDidComplete is emitted when the loaded item plays to its end.
type ItemDidComplete struct {
	Item *item.AudioItem
}

// EngineRecreated is emitted after a failed engine has been replaced.
type EngineRecreated struct{}

// Events holds one bus per event type.
type Events struct {
	StateChange     *event.Bus[StateChange]
	SecondElapsed   *event.Bus[SecondElapsed]
	Seek            *event.Bus[SeekEvent]
	UpdateDuration  *event.Bus[UpdateDuration]
	Fail            *event.Bus[Fail]
	ItemDidComplete *event.Bus[ItemDidComplete]
	EngineRecreated *event.Bus[EngineRecreated]
}

func newEvents() *Events {
	return &Events{
		StateChange:     event.NewBus[StateChange](),
		SecondElapsed:   event.NewBus[SecondElapsed](),
		Seek:            event.NewBus[SeekEvent](),
		UpdateDuration:  event.NewBus[UpdateDuration](),
		Fail:            event.NewBus[Fail](),
		ItemDidComplete: event.NewBus[ItemDidComplete](),
		EngineRecreated: event.NewBus[EngineRecreated](),
	}
}

// Wait blocks until every event published so far has been delivered on every
// bus.
func (e *Events) Wait() {
	e.StateChange.Wait()
	e.SecondElapsed.Wait()
	e.Seek.Wait()
	e.UpdateDuration.Wait()
	e.Fail.Wait()
	e.ItemDidComplete.Wait()
	e.EngineRecreated.Wait()
}
