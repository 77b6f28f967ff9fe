// Package engine defines the contract between the player state machine and the
// media engine that decodes and renders audio.
//
// The engine is commanded through Engine and reports back through Signals
// delivered to the sink registered by Load. Commands are fire-and-forget;
// outcomes arrive later as signals. The player never calls an engine while
// holding its own locks, so an engine may deliver signals from inside a
// command call.
package engine

import (
	"time"

	"github.com/llehouerou/cadence/internal/item"
)

// Sink receives the signals produced for one load.
type Sink func(Signal)

// LoadRequest describes an item to load.
type LoadRequest struct {
	Item          *item.AudioItem
	PlayWhenReady bool
	InitialTime   *float64
	Headers       map[string]string
}

// Engine is the media engine adapter.
type Engine interface {
	// Load replaces the current item. Signals for the new item go to sink
	// only; signals for the replaced item must no longer reach the previous
	// sink once Load returns.
	Load(req LoadRequest, sink Sink)
	Play()
	Pause()
	// Stop pauses and drops the current item. Idempotent.
	Stop()
	// Seek moves the playhead and later reports SeekCompleted with token.
	Seek(seconds float64, token uint64)

	SetVolume(level float64)
	Volume() float64

	// CurrentTime returns the playhead in seconds, NaN when nothing is loaded.
	CurrentTime() float64
	// Duration returns the item duration in seconds, NaN until known.
	Duration() float64
	Rate() float64
	HasCurrentItem() bool

	Close() error
}

// Factory builds a fresh engine, used to replace one that failed.
type Factory func() (Engine, error)

// TimeEventFrequency sets how often PeriodicTime is emitted.
type TimeEventFrequency int

const (
	EverySecond TimeEventFrequency = iota
	EveryHalfSecond
	EveryQuarterSecond
)

// Interval returns the tick period for the frequency.
func (f TimeEventFrequency) Interval() time.Duration {
	switch f {
	case EveryHalfSecond:
		return 500 * time.Millisecond
	case EveryQuarterSecond:
		return 250 * time.Millisecond
	default:
		return time.Second
	}
}

// String returns the frequency name used in configuration.
func (f TimeEventFrequency) String() string {
	switch f {
	case EverySecond:
		return "second"
	case EveryHalfSecond:
		return "half"
	case EveryQuarterSecond:
		return "quarter"
	default:
		return "unknown"
	}
}

// ParseTimeEventFrequency parses a configuration value. Unknown values map to
// EverySecond.
func ParseTimeEventFrequency(s string) TimeEventFrequency {
	switch s {
	case "half":
		return EveryHalfSecond
	case "quarter":
		return EveryQuarterSecond
	default:
		return EverySecond
	}
}
