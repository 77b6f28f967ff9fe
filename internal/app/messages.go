// Package app is the terminal front-end: it wires the player stack together
// and renders it with bubbletea.
package app

import (
	"time"

	"github.com/llehouerou/cadence/internal/player"
)

// TickMsg is sent periodically to refresh the playhead.
type TickMsg time.Time

// StateChangedMsg mirrors a player state change.
type StateChangedMsg struct {
	Previous player.State
	Current  player.State
}

// ElapsedMsg mirrors a periodic time event.
type ElapsedMsg struct {
	Seconds float64
}

// ItemChangedMsg is sent when the queue cursor lands on another item.
type ItemChangedMsg struct {
	Index int
}

// QueueChangedMsg is sent when the queue contents change.
type QueueChangedMsg struct{}

// FailedMsg carries an engine failure.
type FailedMsg struct {
	Err error
}

// ServiceClosedMsg is sent once the event subscription is closed.
type ServiceClosedMsg struct{}

// StderrMsg carries a line a C library wrote to stderr.
type StderrMsg struct {
	Line string
}
