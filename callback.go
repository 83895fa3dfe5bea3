package surf

import "time"

// FrameCallback is called once a frame including a commit has been
// drawn, with the time at which it was drawn. It is called with the
// zero time if it is cancelled instead.
type FrameCallback func(time.Time)

type armedCallback struct {
	frame uint64
	cb    FrameCallback
}

type callbackQueue struct {
	pending []FrameCallback
	active  []armedCallback
}

func (q *callbackQueue) request(cb FrameCallback) {
	q.pending = append(q.pending, cb)
}

func (q *callbackQueue) hasPending() bool {
	return len(q.pending) != 0
}

// arm moves the pending callbacks into the active list to be run once
// the given frame has been drawn.
func (q *callbackQueue) arm(frame uint64) {
	for _, cb := range q.pending {
		q.active = append(q.active, armedCallback{frame: frame, cb: cb})
	}
	q.pending = nil
}

// run calls the active callbacks that were armed for frame or for an
// earlier one.
func (q *callbackQueue) run(frame uint64, t time.Time) {
	var ready []FrameCallback
	rest := q.active[:0]
	for _, a := range q.active {
		if a.frame <= frame {
			ready = append(ready, a.cb)
			continue
		}
		rest = append(rest, a)
	}
	q.active = rest

	for _, cb := range ready {
		cb(t)
	}
}

func (q *callbackQueue) cancel() {
	active := q.active
	q.active = nil
	for _, a := range active {
		a.cb(time.Time{})
	}

	pending := q.pending
	q.pending = nil
	for _, cb := range pending {
		cb(time.Time{})
	}
}
