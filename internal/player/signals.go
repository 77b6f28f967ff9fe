package player

import (
	"math"

	"github.com/llehouerou/cadence/internal/engine"
)

// sinkFor binds engine signals to the load generation gen.
func (p *Player) sinkFor(gen uint64) engine.Sink {
	return func(sig engine.Signal) {
		p.handle(gen, sig)
	}
}

func (p *Player) handle(gen uint64, sig engine.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		p.log.Debug().
			Uint64("gen", gen).
			Uint64("current", p.gen).
			Type("signal", sig).
			Msg("dropping stale signal")
		return
	}
	// A signal for gen means the engine has taken the load.
	p.loadedGen = gen

	switch s := sig.(type) {
	case engine.StatusChanged:
		p.onStatusLocked(s)
	case engine.TimeControlChanged:
		p.onTimeControlLocked(s.TimeControl)
	case engine.PeriodicTime:
		if p.item != nil {
			p.events.SecondElapsed.Publish(SecondElapsed{Seconds: finiteOrZero(s.Seconds)})
		}
	case engine.BoundaryReached:
		if p.item != nil {
			p.timeControl = engine.TimeControlPlaying
			p.ready = true
			p.setStateLocked(Playing)
		}
	case engine.ItemDidPlayToEnd:
		if p.item != nil {
			p.events.ItemDidComplete.Publish(ItemDidComplete{Item: p.item})
		}
	case engine.DurationUpdated:
		d := finiteOrZero(s.Seconds)
		if d > 0 && d != p.duration {
			p.duration = d
			p.events.UpdateDuration.Publish(UpdateDuration{Seconds: d})
		}
	case engine.SeekCompleted:
		p.events.Seek.Publish(SeekEvent{
			Token:    s.Token,
			Seconds:  int(math.Round(finiteOrZero(s.Seconds))),
			Finished: s.Finished,
			Latest:   s.Token == p.seekToken,
		})
	case engine.Failed:
		p.failLocked(s.Err)
	}
}

func (p *Player) onStatusLocked(s engine.StatusChanged) {
	switch s.Status {
	case engine.StatusReady:
		if p.ready || p.item == nil {
			return
		}
		p.ready = true
		p.setStateLocked(Ready)
		if p.playWhenReady {
			p.submit(engine.Engine.Play)
		}
	case engine.StatusFailed:
		p.failLocked(s.Err)
	case engine.StatusUnknown:
	}
}

func (p *Player) onTimeControlLocked(tc engine.TimeControl) {
	p.timeControl = tc
	switch tc {
	case engine.TimeControlPaused:
		switch {
		case p.item == nil:
			p.setStateLocked(Idle)
		case p.ready:
			p.setStateLocked(Paused)
		}
	case engine.TimeControlWaitingToPlayAtRate:
		if p.ready {
			p.setStateLocked(Buffering)
		} else {
			p.setStateLocked(Loading)
		}
	case engine.TimeControlPlaying:
		if p.item == nil {
			return
		}
		p.ready = true
		p.setStateLocked(Playing)
	}
}

func (p *Player) failLocked(cause error) {
	err := &EngineError{BeforeReady: !p.ready, Err: cause}
	failed := p.item
	p.engineFailed = true

	p.log.Warn().
		Err(cause).
		Bool("before_ready", err.BeforeReady).
		Stringer("state", p.state).
		Msg("engine failure")

	if err.BeforeReady && p.item != nil {
		p.gen++
		p.resetLocked()
		p.submit(engine.Engine.Stop)
	}
	p.events.Fail.Publish(Fail{Err: err, Item: failed})
}
