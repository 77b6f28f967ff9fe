package beepengine

import "github.com/gopxl/beep/v2"

// startWatcher calls onStart the first time audio flows through it.
type startWatcher struct {
	beep.Streamer
	onStart func()
	started bool
}

func (w *startWatcher) Stream(samples [][2]float64) (int, bool) {
	n, ok := w.Streamer.Stream(samples)
	if n > 0 && !w.started {
		w.started = true
		w.onStart()
	}
	return n, ok
}
