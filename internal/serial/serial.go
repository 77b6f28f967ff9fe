// Package serial provides a FIFO executor that runs submitted functions one at
// a time on a background goroutine.
package serial

import "sync"

// Queue runs submitted functions in submission order.
//
// Submit never blocks and never runs fn on the caller's goroutine, so it is
// safe to call while holding locks that fn itself may need. A drain goroutine
// is started on demand and exits once the queue is empty, so an idle Queue
// owns no goroutine and needs no Close.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	running bool
	idle    *sync.Cond
}

// Submit enqueues fn for execution after every previously submitted function.
func (q *Queue) Submit(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	go q.drain()
}

// Wait blocks until every function submitted so far has run.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.idle == nil {
		q.idle = sync.NewCond(&q.mu)
	}
	for q.running {
		q.idle.Wait()
	}
}

// Pending returns the number of functions waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			if q.idle != nil {
				q.idle.Broadcast()
			}
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}
