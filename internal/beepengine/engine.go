// Package beepengine is the media engine that plays local files through beep.
//
// Stream items are rejected with a failed status: this engine has no network
// transport.
package beepengine

import (
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/audiosession"
	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/serial"
)

// ErrStreamUnsupported is reported when a stream item is loaded.
var ErrStreamUnsupported = errors.New("stream sources are not supported")

const resampleQuality = 4

// Engine implements engine.Engine on a beep speaker session.
//
// Lock order is e.mu, then the session lock. Code running under the session
// lock (the audio callback) only queues signals.
type Engine struct {
	session  *audiosession.Session
	log      zerolog.Logger
	interval time.Duration
	signals  serial.Queue

	mu     sync.Mutex
	cur    *track
	level  float64
	closed bool
}

// New creates an engine that plays through session.
func New(session *audiosession.Session, freq engine.TimeEventFrequency, log zerolog.Logger) *Engine {
	return &Engine{
		session:  session,
		log:      log,
		interval: freq.Interval(),
		level:    1,
	}
}

// Factory returns an engine.Factory building engines on session.
func Factory(session *audiosession.Session, freq engine.TimeEventFrequency, log zerolog.Logger) engine.Factory {
	return func() (engine.Engine, error) {
		return New(session, freq, log), nil
	}
}

func (e *Engine) Load(req engine.LoadRequest, sink engine.Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unloadLocked()

	t := newTrack(sink, &e.signals)
	e.cur = t
	if e.closed {
		t.emit(engine.StatusChanged{Status: engine.StatusFailed, Err: errors.New("engine closed")})
		return
	}
	if err := e.openLocked(t, req); err != nil {
		e.log.Debug().Err(err).Msg("load failed")
		t.emit(engine.StatusChanged{Status: engine.StatusFailed, Err: err})
		return
	}

	t.emit(engine.DurationUpdated{Seconds: t.duration()})
	t.emit(engine.StatusChanged{Status: engine.StatusReady})
	go e.tick(t)
}

func (e *Engine) openLocked(t *track, req engine.LoadRequest) error {
	if req.Item == nil {
		return errors.New("nil item")
	}
	if req.Item.Kind == item.KindStream {
		return errors.Wrapf(ErrStreamUnsupported, "%q", req.Item.Locator)
	}

	stream, format, err := openFile(req.Item.Locator)
	if err != nil {
		return err
	}
	rate, err := e.session.Activate(format.SampleRate)
	if err != nil {
		stream.Close()
		return err
	}
	if req.InitialTime != nil {
		if err := stream.Seek(clampPosition(format.SampleRate.N(secondsToDuration(*req.InitialTime)), stream.Len())); err != nil {
			e.log.Debug().Err(err).Msg("initial seek")
		}
	}

	var src beep.Streamer = stream
	if format.SampleRate != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, rate, stream)
	}

	t.stream = stream
	t.format = format
	t.ctrl = &beep.Ctrl{
		Streamer: &startWatcher{
			Streamer: src,
			onStart:  func() { t.emit(engine.BoundaryReached{}) },
		},
		Paused: true,
	}
	t.volume = &effects.Volume{
		Streamer: t.ctrl,
		Base:     2,
		Volume:   levelToVolume(e.level),
		Silent:   e.level <= 0,
	}

	e.enqueue(t)
	return nil
}

// enqueue adds t to the output mix. At the end of the item the callback runs
// under the session lock, so it only flips flags and queues signals.
func (e *Engine) enqueue(t *track) {
	e.session.Play(beep.Seq(t.volume, beep.Callback(func() {
		t.ctrl.Paused = true
		t.ended = true
		t.emit(engine.ItemDidPlayToEnd{})
		t.emit(engine.TimeControlChanged{TimeControl: engine.TimeControlPaused})
	})))
}

func (e *Engine) Play() {
	e.setPaused(false)
}

func (e *Engine) Pause() {
	e.setPaused(true)
}

func (e *Engine) setPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.cur
	if t == nil || t.ctrl == nil {
		return
	}
	e.session.Lock()
	restart := !paused && t.ended
	if restart {
		t.ended = false
		if err := t.stream.Seek(0); err != nil {
			e.log.Debug().Err(err).Msg("rewind")
		}
	}
	t.ctrl.Paused = paused
	e.session.Unlock()
	if restart {
		e.enqueue(t)
	}

	tc := engine.TimeControlPlaying
	if paused {
		tc = engine.TimeControlPaused
	}
	t.emit(engine.TimeControlChanged{TimeControl: tc})
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unloadLocked()
}

func (e *Engine) Seek(seconds float64, token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.cur
	if t == nil {
		return
	}
	if t.stream == nil {
		t.emit(engine.SeekCompleted{Token: token, Seconds: seconds})
		return
	}

	pos := clampPosition(t.format.SampleRate.N(secondsToDuration(seconds)), t.stream.Len())
	e.session.Lock()
	err := t.stream.Seek(pos)
	e.session.Unlock()
	if err != nil {
		e.log.Debug().Err(err).Float64("seconds", seconds).Msg("seek failed")
	}
	t.emit(engine.SeekCompleted{
		Token:    token,
		Seconds:  t.format.SampleRate.D(pos).Seconds(),
		Finished: err == nil,
	})
}

func (e *Engine) SetVolume(level float64) {
	level = clampLevel(level)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = level
	t := e.cur
	if t == nil || t.volume == nil {
		return
	}
	e.session.Lock()
	t.volume.Volume = levelToVolume(level)
	t.volume.Silent = level <= 0
	e.session.Unlock()
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.cur
	if t == nil || t.stream == nil {
		return math.NaN()
	}
	return e.positionLocked(t)
}

func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.cur
	if t == nil || t.stream == nil {
		return math.NaN()
	}
	return t.duration()
}

func (e *Engine) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.cur
	if t == nil || t.ctrl == nil {
		return 0
	}
	e.session.Lock()
	defer e.session.Unlock()
	if t.ctrl.Paused {
		return 0
	}
	return 1
}

func (e *Engine) HasCurrentItem() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cur != nil && e.cur.stream != nil
}

// Close stops playback. The session stays active for other engines.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unloadLocked()
	e.closed = true
	return nil
}

func (e *Engine) positionLocked(t *track) float64 {
	e.session.Lock()
	defer e.session.Unlock()
	return t.format.SampleRate.D(t.stream.Position()).Seconds()
}

// unloadLocked detaches the current track from the output and its sink.
func (e *Engine) unloadLocked() {
	t := e.cur
	if t == nil {
		return
	}
	e.cur = nil
	t.kill()
	if t.ctrl == nil {
		return
	}

	// A Ctrl without a streamer reports exhaustion, so the mixer drops the
	// sequence on its next pass.
	e.session.Lock()
	t.ctrl.Streamer = nil
	e.session.Unlock()

	if err := t.stream.Close(); err != nil {
		e.log.Debug().Err(err).Msg("close stream")
	}
}

// tick emits PeriodicTime while t is loaded and playing.
func (e *Engine) tick(t *track) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			e.session.Lock()
			playing := t.ctrl.Streamer != nil && !t.ctrl.Paused
			var pos int
			if playing {
				pos = t.stream.Position()
			}
			e.session.Unlock()
			if playing {
				t.emit(engine.PeriodicTime{Seconds: t.format.SampleRate.D(pos).Seconds()})
			}
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func clampPosition(pos, length int) int {
	return min(max(pos, 0), length)
}

// Verify Engine implements engine.Engine at compile time.
var _ engine.Engine = (*Engine)(nil)
