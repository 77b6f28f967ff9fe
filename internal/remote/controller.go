package remote

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/player"
)

// Status is the outcome reported back to the command source.
type Status int

const (
	Success Status = iota
	NoActionableNowPlayingItem
	CommandFailed
	CommandDisabled
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NoActionableNowPlayingItem:
		return "no actionable now playing item"
	case CommandFailed:
		return "command failed"
	case CommandDisabled:
		return "command disabled"
	default:
		return "unknown"
	}
}

// DefaultSkipInterval is used by skip commands without an interval.
const DefaultSkipInterval = 15 * time.Second

// Target is what commands act on. *playback.QueuedPlayer satisfies it.
type Target interface {
	Play() error
	Pause() error
	Stop()
	TogglePlaying() error
	Next() error
	Previous() error
	Seek(seconds float64) (uint64, error)
	CurrentTime() float64
}

// Controller dispatches commands to a Target.
type Controller struct {
	target Target
	log    zerolog.Logger
	skip   time.Duration

	mu      sync.RWMutex
	enabled map[Kind]bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithSkipInterval sets the default skip interval.
func WithSkipInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.skip = d
		}
	}
}

// WithEnabled limits the enabled commands to kinds. Every command is enabled
// by default.
func WithEnabled(kinds ...Kind) Option {
	return func(c *Controller) { c.enabled = kindSet(kinds) }
}

// NewController creates a controller acting on target.
func NewController(target Target, opts ...Option) *Controller {
	c := &Controller{
		target:  target,
		log:     zerolog.Nop(),
		skip:    DefaultSkipInterval,
		enabled: kindSet(AllKinds()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enable replaces the enabled set with kinds.
func (c *Controller) Enable(kinds ...Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = kindSet(kinds)
}

// Enabled reports whether commands of kind k are handled.
func (c *Controller) Enabled(k Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled[k]
}

// SkipInterval returns the interval used by skip commands without one.
func (c *Controller) SkipInterval() time.Duration {
	return c.skip
}

// Handle runs cmd against the target.
func (c *Controller) Handle(cmd Command) Status {
	if cmd == nil {
		return CommandFailed
	}
	if !c.Enabled(cmd.Kind()) {
		c.log.Debug().Stringer("command", cmd.Kind()).Msg("remote command disabled")
		return CommandDisabled
	}

	var err error
	switch cmd := cmd.(type) {
	case Play:
		err = c.target.Play()
	case Pause:
		err = c.target.Pause()
	case Stop:
		c.target.Stop()
	case TogglePlayPause:
		err = c.target.TogglePlaying()
	case Next:
		err = c.target.Next()
	case Previous:
		err = c.target.Previous()
	case ChangePlaybackPosition:
		_, err = c.target.Seek(cmd.Seconds)
	case SkipForward:
		err = c.skipBy(c.intervalOr(cmd.Interval))
	case SkipBackward:
		err = c.skipBy(-c.intervalOr(cmd.Interval))
	}

	status := statusFor(err)
	if err != nil {
		c.log.Debug().Err(err).Stringer("command", cmd.Kind()).Stringer("status", status).Msg("remote command")
	}
	return status
}

func (c *Controller) skipBy(d time.Duration) error {
	_, err := c.target.Seek(max(c.target.CurrentTime()+d.Seconds(), 0))
	return err
}

func (c *Controller) intervalOr(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return c.skip
}

func statusFor(err error) Status {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, player.ErrNoLoadedItem):
		return NoActionableNowPlayingItem
	default:
		return CommandFailed
	}
}

func kindSet(kinds []Kind) map[Kind]bool {
	set := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
