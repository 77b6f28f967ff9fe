package state

// Interface is the queue store used by the front-end.
type Interface interface {
	GetQueue() (*QueueState, error)
	SaveQueue(state QueueState) error
	ScheduleSave(state QueueState)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
