// Package remote routes transport commands from outside the process (media
// keys, desktop integrations) to the queued player.
package remote

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Kind identifies a command independently of its arguments.
type Kind int

const (
	KindPlay Kind = iota
	KindPause
	KindStop
	KindTogglePlayPause
	KindNext
	KindPrevious
	KindChangePlaybackPosition
	KindSkipForward
	KindSkipBackward
)

var kindNames = [...]string{
	KindPlay:                   "play",
	KindPause:                  "pause",
	KindStop:                   "stop",
	KindTogglePlayPause:        "toggle-play-pause",
	KindNext:                   "next",
	KindPrevious:               "previous",
	KindChangePlaybackPosition: "change-playback-position",
	KindSkipForward:            "skip-forward",
	KindSkipBackward:           "skip-backward",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the kind named name, as printed by Kind.String.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, errors.Newf("unknown remote command %q", name)
}

// AllKinds returns every command kind.
func AllKinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Command is a remote command. The set of implementations is closed.
type Command interface {
	Kind() Kind
	command()
}

type (
	Play            struct{}
	Pause           struct{}
	Stop            struct{}
	TogglePlayPause struct{}
	Next            struct{}
	Previous        struct{}

	// ChangePlaybackPosition seeks to an absolute position.
	ChangePlaybackPosition struct {
		Seconds float64
	}

	// SkipForward seeks ahead by Interval. A zero Interval uses the
	// controller's default.
	SkipForward struct {
		Interval time.Duration
	}

	// SkipBackward seeks back by Interval. A zero Interval uses the
	// controller's default.
	SkipBackward struct {
		Interval time.Duration
	}
)

func (Play) Kind() Kind                   { return KindPlay }
func (Pause) Kind() Kind                  { return KindPause }
func (Stop) Kind() Kind                   { return KindStop }
func (TogglePlayPause) Kind() Kind        { return KindTogglePlayPause }
func (Next) Kind() Kind                   { return KindNext }
func (Previous) Kind() Kind               { return KindPrevious }
func (ChangePlaybackPosition) Kind() Kind { return KindChangePlaybackPosition }
func (SkipForward) Kind() Kind            { return KindSkipForward }
func (SkipBackward) Kind() Kind           { return KindSkipBackward }

func (Play) command()                   {}
func (Pause) command()                  {}
func (Stop) command()                   {}
func (TogglePlayPause) command()        {}
func (Next) command()                   {}
func (Previous) command()               {}
func (ChangePlaybackPosition) command() {}
func (SkipForward) command()            {}
func (SkipBackward) command()           {}
