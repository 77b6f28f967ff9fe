// Package player reconciles asynchronous media engine signals into a small
// public state machine.
//
// Public calls mutate the state synchronously and hand engine commands to a
// serial executor, so they never block on the engine and never call it while
// holding the player lock. Engine signals are applied in arrival order under
// the same lock; signals from a load that has been superseded are dropped.
package player

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/serial"
)

// ErrClosed is returned by operations on a closed player.
var ErrClosed = errors.New("player closed")

// Player drives one media engine.
type Player struct {
	log     zerolog.Logger
	factory engine.Factory
	events  *Events
	cmds    serial.Queue

	mu            sync.Mutex
	eng           engine.Engine
	engineFailed  bool
	closed        bool
	state         State
	item          *item.AudioItem
	playWhenReady bool
	ready         bool
	timeControl   engine.TimeControl
	duration      float64
	gen           uint64
	loadedGen     uint64
	seekToken     uint64
	volume        float64
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// WithVolume sets the initial volume level.
func WithVolume(level float64) Option {
	return func(p *Player) { p.volume = clampUnit(level) }
}

// New builds a player and its first engine.
func New(factory engine.Factory, opts ...Option) (*Player, error) {
	if factory == nil {
		return nil, errors.New("nil engine factory")
	}
	p := &Player{
		log:     zerolog.Nop(),
		factory: factory,
		events:  newEvents(),
		volume:  1,
	}
	for _, opt := range opts {
		opt(p)
	}

	eng, err := factory()
	if err != nil {
		return nil, errors.Wrap(err, "create engine")
	}
	p.eng = eng
	p.submit(func(e engine.Engine) { e.SetVolume(p.Volume()) })
	return p, nil
}

// Events returns the player's event buses.
func (p *Player) Events() *Events {
	return p.events
}

// LoadOption customizes a single Load.
type LoadOption func(*engine.LoadRequest)

// WithInitialTime starts playback at seconds.
func WithInitialTime(seconds float64) LoadOption {
	return func(r *engine.LoadRequest) { r.InitialTime = &seconds }
}

// WithHeaders passes request headers to the engine for stream items.
func WithHeaders(h map[string]string) LoadOption {
	return func(r *engine.LoadRequest) { r.Headers = h }
}

// Load replaces the current item with it and moves to Loading.
//
// Observation of the previous item ends before Load returns. The engine
// receives the item asynchronously; playWhenReady is consulted once, when
// the engine reports the item ready.
func (p *Player) Load(it *item.AudioItem, playWhenReady bool, opts ...LoadOption) error {
	if it == nil {
		return errors.Wrap(item.ErrInvalidSourceLocator, "nil item")
	}
	if _, err := item.ValidateLocator(it.Locator, it.Kind); err != nil {
		return err
	}

	req := engine.LoadRequest{Item: it, PlayWhenReady: playWhenReady}
	for _, opt := range opts {
		opt(&req)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.gen++
	gen := p.gen
	p.item = it
	p.playWhenReady = playWhenReady
	p.ready = false
	p.timeControl = engine.TimeControlPaused
	p.duration = 0
	p.setStateLocked(Loading)

	recreate := p.engineFailed
	p.engineFailed = false

	p.log.Debug().
		Str("item", it.ID.String()).
		Str("locator", it.Locator).
		Bool("play_when_ready", playWhenReady).
		Uint64("gen", gen).
		Msg("load")

	sink := p.sinkFor(gen)
	p.cmds.Submit(func() {
		if recreate && !p.recreateEngine() {
			return
		}
		if e := p.engine(); e != nil {
			e.Load(req, sink)
			p.markLoaded(gen)
		}
	})
	return nil
}

// Stop pauses the engine and resets to Idle with no item. Stopping an idle
// player does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || (p.state == Idle && p.item == nil) {
		return
	}
	p.gen++
	p.resetLocked()
	p.submit(func(e engine.Engine) {
		e.Pause()
		e.Stop()
	})
}

// Play starts playback, or records the intent when the item is not ready yet.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playLocked()
}

// Pause halts playback, or clears the intent when the item is not ready yet.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauseLocked()
}

// TogglePlaying pauses when playing or about to play, and plays otherwise.
func (p *Player) TogglePlaying() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	playing := p.playWhenReady
	if p.ready {
		playing = p.timeControl == engine.TimeControlPlaying ||
			p.timeControl == engine.TimeControlWaitingToPlayAtRate
	}
	if playing {
		return p.pauseLocked()
	}
	return p.playLocked()
}

func (p *Player) playLocked() error {
	if p.item == nil {
		return ErrNoLoadedItem
	}
	p.playWhenReady = true
	if p.ready {
		p.submit(engine.Engine.Play)
	}
	return nil
}

func (p *Player) pauseLocked() error {
	if p.item == nil {
		return ErrNoLoadedItem
	}
	p.playWhenReady = false
	if p.ready {
		p.submit(engine.Engine.Pause)
	}
	return nil
}

// Seek moves the playhead to seconds, clamped to [0, Duration()]. The
// returned token identifies the SeekEvent reporting completion.
func (p *Player) Seek(seconds float64) (uint64, error) {
	duration := p.Duration()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.item == nil {
		return 0, ErrNoLoadedItem
	}

	target := clampSeek(seconds, duration)
	p.seekToken++
	tok := p.seekToken
	p.log.Debug().Float64("target", target).Uint64("token", tok).Msg("seek")
	p.submit(func(e engine.Engine) { e.Seek(target, tok) })
	return tok, nil
}

// SetVolume sets the output level, clamped to [0, 1].
func (p *Player) SetVolume(level float64) {
	level = clampUnit(level)
	p.mu.Lock()
	p.volume = level
	p.mu.Unlock()
	p.submit(func(e engine.Engine) { e.SetVolume(level) })
}

// Volume returns the output level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentItem returns the loaded item, or nil.
func (p *Player) CurrentItem() *item.AudioItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.item
}

// PlayWhenReady reports the stored play intent.
func (p *Player) PlayWhenReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playWhenReady
}

// CurrentTime returns the playhead in seconds, 0 with no item.
func (p *Player) CurrentTime() float64 {
	e, ok := p.loadedEngine()
	if !ok {
		return 0
	}
	return finiteOrZero(e.CurrentTime())
}

// Duration returns the item duration in seconds, 0 until resolved.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	d := p.duration
	p.mu.Unlock()
	if d > 0 {
		return d
	}
	e, ok := p.loadedEngine()
	if !ok {
		return 0
	}
	return finiteOrZero(e.Duration())
}

// Rate returns the playback rate, 0 unless playing.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	playing, e := p.state == Playing, p.eng
	p.mu.Unlock()
	if !playing || e == nil {
		return 0
	}
	return finiteOrZero(e.Rate())
}

// Close stops playback and releases the engine.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.gen++
	p.resetLocked()
	p.mu.Unlock()

	p.cmds.Wait()

	p.mu.Lock()
	e := p.eng
	p.eng = nil
	p.mu.Unlock()
	if e == nil {
		return nil
	}
	e.Stop()
	return errors.Wrap(e.Close(), "close engine")
}

func (p *Player) engine() engine.Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng
}

// loadedEngine returns the engine once it has received the current load.
// Until then it still reports on the previous item.
func (p *Player) loadedEngine() (engine.Engine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.item == nil || p.eng == nil || p.loadedGen != p.gen {
		return nil, false
	}
	return p.eng, true
}

func (p *Player) markLoaded(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.gen {
		p.loadedGen = gen
	}
}

// submit queues fn to run against the current engine. Safe under p.mu.
func (p *Player) submit(fn func(engine.Engine)) {
	p.cmds.Submit(func() {
		if e := p.engine(); e != nil {
			fn(e)
		}
	})
}

// recreateEngine replaces a failed engine. Runs on the command queue.
func (p *Player) recreateEngine() bool {
	fresh, err := p.factory()
	if err != nil {
		p.log.Warn().Err(err).Msg("recreate engine")
		p.mu.Lock()
		p.engineFailed = true
		failed := p.item
		if p.item != nil {
			p.gen++
			p.resetLocked()
		}
		p.mu.Unlock()
		p.events.Fail.Publish(Fail{
			Err:  &EngineError{BeforeReady: true, Err: err},
			Item: failed,
		})
		return false
	}

	p.mu.Lock()
	old := p.eng
	p.eng = fresh
	volume := p.volume
	p.mu.Unlock()

	if old != nil {
		old.Stop()
		if err := old.Close(); err != nil {
			p.log.Debug().Err(err).Msg("close failed engine")
		}
	}
	fresh.SetVolume(volume)
	p.log.Info().Msg("engine recreated")
	p.events.EngineRecreated.Publish(EngineRecreated{})
	return true
}

func (p *Player) resetLocked() {
	p.item = nil
	p.playWhenReady = false
	p.ready = false
	p.timeControl = engine.TimeControlPaused
	p.duration = 0
	p.setStateLocked(Idle)
}

func (p *Player) setStateLocked(s State) {
	if p.state == s {
		return
	}
	prev := p.state
	p.state = s
	p.log.Debug().Stringer("from", prev).Stringer("to", s).Msg("state")
	p.events.StateChange.Publish(StateChange{Previous: prev, Current: s})
}

func clampSeek(seconds, duration float64) float64 {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	if duration > 0 && seconds > duration {
		return duration
	}
	return seconds
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
