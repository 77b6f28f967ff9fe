package app

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/player"
	"github.com/llehouerou/cadence/internal/state"
)

// Persister saves the queue whenever it changes.
type Persister struct {
	qp    *playback.QueuedPlayer
	store state.Interface
	log   zerolog.Logger
	subs  event.Subscription
}

// NewPersister schedules a save on every queue change and every pause or
// stop, so the saved position stays close to the real one.
func NewPersister(qp *playback.QueuedPlayer, store state.Interface, log zerolog.Logger) *Persister {
	p := &Persister{qp: qp, store: store, log: log}
	event.On(&p.subs, qp.Events().QueueChange, func(playback.QueueChange) { p.schedule() })
	event.On(&p.subs, qp.Player().Events().StateChange, func(e player.StateChange) {
		if e.Current == player.Paused || e.Current == player.Idle {
			p.schedule()
		}
	})
	return p
}

// SaveQueueState captures the queue, cursor, playhead and volume.
func SaveQueueState(qp *playback.QueuedPlayer) state.QueueState {
	return state.NewQueueState(qp.Items(), qp.CurrentIndex(), qp.CurrentTime(), qp.Volume())
}

func (p *Persister) schedule() {
	p.store.ScheduleSave(SaveQueueState(p.qp))
}

// Flush stops listening and writes the current queue now.
func (p *Persister) Flush() {
	p.subs.Close()
	if err := p.store.SaveQueue(SaveQueueState(p.qp)); err != nil {
		p.log.Warn().Err(err).Msg("save queue state")
	}
}
