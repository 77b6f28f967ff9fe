package player

// State is the public playback state.
//
//	         Load                 ready               playing
//	Idle ─────────▶ Loading ─────────────▶ Ready ────────────▶ Playing
//	  ▲                │                     │  ▲                 │ ▲
//	  │ Stop / failure │                     │  │ waiting         │ │
//	  └────────────────┘              paused │  └── Buffering ◀───┘ │
//	                                         ▼                      │
//	                                       Paused ──────────────────┘
//
// Transitions follow engine signals; the public API only moves the machine
// to Loading (Load) and Idle (Stop).
//   - time-control paused: Paused with an item, Idle without one, and no
//     change while the load has not reported ready yet
//   - time-control waiting: Loading before ready, Buffering after
//   - time-control playing or boundary reached: Playing
//   - status ready: Ready, then play if the load asked for it
//   - status failed before ready: Idle
type State int

const (
	Idle State = iota
	Loading
	Buffering
	Ready
	Playing
	Paused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Buffering:
		return "buffering"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// HasItem reports whether an item is loaded in this state.
func (s State) HasItem() bool {
	return s != Idle
}

// IsActive returns true while audio is flowing or about to.
func (s State) IsActive() bool {
	return s == Playing || s == Buffering
}
