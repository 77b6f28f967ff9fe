package engine

// Signal is a raw notification from the engine. The set of implementations is
// closed; switch on the concrete type.
type Signal interface {
	signal()
}

// Status is the readiness of the loaded item.
type Status int

const (
	StatusUnknown Status = iota
	StatusReady
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// TimeControl is what the engine is doing with the playhead.
type TimeControl int

const (
	TimeControlPaused TimeControl = iota
	TimeControlWaitingToPlayAtRate
	TimeControlPlaying
)

// String returns the time control name.
func (t TimeControl) String() string {
	switch t {
	case TimeControlPaused:
		return "paused"
	case TimeControlWaitingToPlayAtRate:
		return "waiting"
	case TimeControlPlaying:
		return "playing"
	default:
		return "invalid"
	}
}

// StatusChanged reports item readiness. Err is set when Status is
// StatusFailed.
type StatusChanged struct {
	Status Status
	Err    error
}

// TimeControlChanged reports a playhead state change.
type TimeControlChanged struct {
	TimeControl TimeControl
}

// PeriodicTime is emitted at the configured frequency while an item is loaded.
type PeriodicTime struct {
	Seconds float64
}

// BoundaryReached marks that audio actually started flowing.
type BoundaryReached struct{}

// ItemDidPlayToEnd marks the end of the loaded item.
type ItemDidPlayToEnd struct{}

// DurationUpdated reports a newly resolved duration.
type DurationUpdated struct {
	Seconds float64
}

// SeekCompleted answers Seek. Finished is false when the seek was
// interrupted, for example by a later seek.
type SeekCompleted struct {
	Token    uint64
	Seconds  float64
	Finished bool
}

// Failed reports an engine error outside of item status, for example a decode
// error mid-stream.
type Failed struct {
	Err error
}

func (StatusChanged) signal()      {}
func (TimeControlChanged) signal() {}
func (PeriodicTime) signal()       {}
func (BoundaryReached) signal()    {}
func (ItemDidPlayToEnd) signal()   {}
func (DurationUpdated) signal()    {}
func (SeekCompleted) signal()      {}
func (Failed) signal()             {}
