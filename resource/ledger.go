package resource

import (
	"sync"
	"sync/atomic"

	"deedles.dev/surf/internal/debug"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Ledger keeps track of the resources that have been produced for a
// single surface along with the callbacks that release them.
//
// A Ledger is reference counted. Its creator holds the first
// reference, and every resource that is outstanding holds another, so
// a release notification that arrives after the owner has let go of
// the ledger still finds it intact. Unlike the surface that owns it,
// a Ledger is safe for concurrent use.
type Ledger struct {
	refs     atomic.Int32
	producer Producer
	post     func(func()) bool

	m       sync.Mutex
	entries map[ID]func(Fence, bool)
	closed  bool
}

// NewLedger returns a ledger that produces resources using producer.
// Release callbacks triggered by a backend notification are passed to
// post, which is expected to run them on the goroutine that owns the
// buffers. If post is nil, or if it returns false to indicate that
// the callback could not be queued, the callback is run directly by
// the notifying goroutine.
func NewLedger(producer Producer, post func(func()) bool) *Ledger {
	l := Ledger{
		producer: producer,
		post:     post,
		entries:  make(map[ID]func(Fence, bool)),
	}
	l.refs.Store(1)

	return &l
}

// Ref adds a reference to the ledger.
func (l *Ledger) Ref() *Ledger {
	l.refs.Add(1)
	return l
}

// Unref removes a reference. When the last reference is removed, any
// entries that are still outstanding are released as lost.
func (l *Ledger) Unref() {
	n := l.refs.Add(-1)
	switch {
	case n == 0:
		l.drain()
	case n < 0:
		debug.Log().WithField("refs", n).Warn("resource ledger released too many times")
	}
}

// Produce turns buf into a resource. It fails without side effects if
// buf is nil, if the ledger has been drained, or if the backend can't
// produce a resource, in which case the zero Resource is returned.
func (l *Ledger) Produce(buf Buffer, secureOnly bool, hint UsageHint) (Resource, bool) {
	if buf == nil {
		return Resource{}, false
	}

	// The lock is held until the entry exists so that a release from
	// another goroutine can't arrive before it.
	l.m.Lock()
	defer l.m.Unlock()

	if l.closed {
		debug.Log().Warn("resource produced from drained ledger")
		return Resource{}, false
	}

	res, err := l.producer.CreateResource(buf, secureOnly, hint, l)
	if err != nil {
		debug.Log().WithError(err).Warn("produce resource")
		return Resource{}, false
	}
	if !res.Valid() {
		return Resource{}, false
	}

	if _, ok := l.entries[res.ID]; ok {
		debug.Log().WithField("resource", res.ID).Warn("backend reused an outstanding resource ID")
		return Resource{}, false
	}
	buf.OnUse()
	l.entries[res.ID] = buf.OnRelease

	l.Ref()
	debug.Printf("resource %v produced (%v, secure: %v, hint: %v)", res.ID, res.Size, secureOnly, hint)
	return res, true
}

// Released implements Notifier. It removes the entry for id and runs
// its release callback. A release for an ID that the ledger doesn't
// know about is logged and otherwise ignored.
func (l *Ledger) Released(id ID, fence Fence, lost bool) {
	l.m.Lock()
	release, ok := l.entries[id]
	delete(l.entries, id)
	closed := l.closed
	l.m.Unlock()

	if !ok {
		if closed {
			debug.Printf("resource %v released after ledger was drained", id)
			return
		}
		debug.Log().WithFields(logrus.Fields{
			"resource": id,
			"fence":    fence,
		}).Warn("release of unknown resource")
		return
	}

	if (l.post == nil) || !l.post(func() { release(fence, lost) }) {
		release(fence, lost)
	}
	l.Unref()
}

// Drain releases every outstanding entry as lost and stops the ledger
// from producing anything else. The release callbacks are run before
// Drain returns.
func (l *Ledger) Drain() {
	for range l.drain() {
		l.Unref()
	}
}

// drain empties the ledger, running the release callback of every
// entry, and returns the callbacks that were run so that Drain can
// drop their references.
func (l *Ledger) drain() []func(Fence, bool) {
	l.m.Lock()
	l.closed = true
	ids := make([]ID, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	releases := make([]func(Fence, bool), 0, len(ids))
	for _, id := range ids {
		releases = append(releases, l.entries[id])
		delete(l.entries, id)
	}
	l.m.Unlock()

	for i, release := range releases {
		debug.Printf("resource %v released as lost", ids[i])
		release(0, true)
	}
	return releases
}

// Len returns the number of resources that have not yet been
// released.
func (l *Ledger) Len() int {
	l.m.Lock()
	defer l.m.Unlock()

	return len(l.entries)
}

// Closed returns true if the ledger has been drained.
func (l *Ledger) Closed() bool {
	l.m.Lock()
	defer l.m.Unlock()

	return l.closed
}
