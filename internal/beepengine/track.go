package beepengine

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/serial"
)

// track is one load: the decoder chain plus the sink its signals go to.
//
// Fields touched by the audio goroutine (ctrl, ended) are guarded by the
// session lock.
type track struct {
	sink    engine.Sink
	signals *serial.Queue
	done    chan struct{}

	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	volume *effects.Volume
	ended  bool

	mu   sync.RWMutex
	dead bool
}

func newTrack(sink engine.Sink, signals *serial.Queue) *track {
	return &track{
		sink:    sink,
		signals: signals,
		done:    make(chan struct{}),
	}
}

// emit queues sig for delivery. Signals still queued when the track is
// killed are discarded.
func (t *track) emit(sig engine.Signal) {
	t.signals.Submit(func() {
		t.mu.RLock()
		defer t.mu.RUnlock()
		if !t.dead && t.sink != nil {
			t.sink(sig)
		}
	})
}

// kill stops delivery. Once kill returns the sink is never called again.
func (t *track) kill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return
	}
	t.dead = true
	close(t.done)
}

func (t *track) duration() float64 {
	return t.format.SampleRate.D(t.stream.Len()).Seconds()
}
