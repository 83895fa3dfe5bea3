// Package ev implements the queue that work arriving from other
// goroutines is marshaled through before it is run by the goroutine
// that owns the surface tree.
package ev

import (
	"errors"
	"sync"

	"deedles.dev/xsync"
)

// Queue collects tasks from any goroutine in FIFO order. Tasks are run
// by whoever receives them from Tasks.
type Queue struct {
	tasks xsync.Queue[func() error]
	stop  xsync.Stopper

	m      sync.RWMutex
	closed bool
}

func NewQueue() *Queue {
	return new(Queue)
}

// Post adds task to the queue. It returns false without adding
// anything if the queue has been closed.
func (q *Queue) Post(task func() error) bool {
	q.m.RLock()
	defer q.m.RUnlock()

	if q.closed {
		return false
	}
	q.tasks.Push() <- task
	return true
}

// Tasks yields the tasks that have been posted.
func (q *Queue) Tasks() <-chan func() error {
	return q.tasks.Pop()
}

// Done is closed when the queue stops accepting tasks.
func (q *Queue) Done() <-chan struct{} {
	return q.stop.Done()
}

// Close stops the queue from accepting new tasks. Tasks that were
// already accepted can still be received.
func (q *Queue) Close() {
	q.m.Lock()
	defer q.m.Unlock()

	q.closed = true
	q.stop.Stop()
}

// Flush runs tasks until none are immediately available.
func (q *Queue) Flush() error {
	var errs []error
	for {
		select {
		case task, ok := <-q.tasks.Pop():
			if !ok {
				return errors.Join(errs...)
			}
			if err := task(); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}

// Drain runs every task that was accepted before Drain was called,
// blocking until the last of them has run. It works on a closed
// queue, but not on a stopped one.
func (q *Queue) Drain() error {
	marker := make(chan struct{})
	q.tasks.Push() <- func() error {
		close(marker)
		return nil
	}

	var errs []error
	for {
		task, ok := <-q.tasks.Pop()
		if !ok {
			return errors.Join(errs...)
		}
		if err := task(); err != nil {
			errs = append(errs, err)
		}

		select {
		case <-marker:
			return errors.Join(errs...)
		default:
		}
	}
}

// Stop closes the queue and releases the goroutine that backs it.
// Tasks that have not been received are discarded.
func (q *Queue) Stop() {
	q.Close()
	q.tasks.Stop()
}
