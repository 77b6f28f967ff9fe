package state

import "sync"

// Mock is an in-memory Interface for tests. Scheduled saves apply at once.
type Mock struct {
	mu     sync.Mutex
	queue  *QueueState
	saves  int
	closed bool
}

// NewMock creates an empty mock store.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GetQueue() (*QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue == nil {
		return nil, nil
	}
	q := *m.queue
	return &q, nil
}

func (m *Mock) SaveQueue(state QueueState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = &state
	m.saves++
	return nil
}

func (m *Mock) ScheduleSave(state QueueState) {
	_ = m.SaveQueue(state)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Saves returns how many times the queue was written.
func (m *Mock) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// IsClosed reports whether Close was called.
func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Interface = (*Mock)(nil)
