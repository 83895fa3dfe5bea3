// Package recorder implements a surf.Backend and surf.Window that do
// no drawing but remember everything that is done to them.
package recorder

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"deedles.dev/surf"
	"deedles.dev/surf/internal/debug"
	"deedles.dev/surf/resource"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownTarget   = errors.New("unknown target")
	ErrNoFrame         = errors.New("no frame submitted")
)

// Resource is a resource that was produced by a Backend.
type Resource struct {
	ID         resource.ID
	Size       image.Point
	SecureOnly bool
	Hint       resource.UsageHint

	notify resource.Notifier
}

// Target is a render target that was created by a Backend.
type Target struct {
	ID        surf.TargetID
	Frames    []surf.Frame
	Destroyed bool
}

// Backend is a surf.Backend that records what is done to it. It is
// safe for concurrent use.
type Backend struct {
	// Fail, if not nil, is called for every resource that is about to
	// be produced. If it returns true, production fails.
	Fail func(resource.Buffer) bool

	// AutoRelease makes the backend release resources as soon as no
	// live target's latest frame uses them.
	AutoRelease bool

	m         sync.Mutex
	nextRes   resource.ID
	nextTgt   surf.TargetID
	resources map[resource.ID]*Resource
	targets   map[surf.TargetID]*Target
	order     []surf.TargetID
}

func New() *Backend {
	return &Backend{
		resources: make(map[resource.ID]*Resource),
		targets:   make(map[surf.TargetID]*Target),
	}
}

func (b *Backend) CreateResource(buf resource.Buffer, secureOnly bool, hint resource.UsageHint, notify resource.Notifier) (resource.Resource, error) {
	if (b.Fail != nil) && b.Fail(buf) {
		return resource.Resource{}, fmt.Errorf("create resource for %v buffer: %w", buf.Size(), errors.ErrUnsupported)
	}

	b.m.Lock()
	defer b.m.Unlock()

	b.nextRes++
	r := Resource{
		ID:         b.nextRes,
		Size:       buf.Size(),
		SecureOnly: secureOnly,
		Hint:       hint,
		notify:     notify,
	}
	b.resources[r.ID] = &r

	return resource.Resource{ID: r.ID, Size: r.Size}, nil
}

func (b *Backend) CreateTarget() surf.TargetID {
	b.m.Lock()
	defer b.m.Unlock()

	b.nextTgt++
	b.targets[b.nextTgt] = &Target{ID: b.nextTgt}
	b.order = append(b.order, b.nextTgt)
	return b.nextTgt
}

func (b *Backend) DestroyTarget(id surf.TargetID) {
	b.m.Lock()
	t, ok := b.targets[id]
	if !ok || t.Destroyed {
		b.m.Unlock()
		debug.Log().WithField("target", id).Warn("destroy of unknown target")
		return
	}
	t.Destroyed = true
	released := b.collect()
	b.m.Unlock()

	b.release(released)
}

func (b *Backend) SubmitFrame(id surf.TargetID, frame surf.Frame) {
	b.m.Lock()
	t, ok := b.targets[id]
	if !ok || t.Destroyed {
		b.m.Unlock()
		debug.Log().WithField("target", id).Warn("frame submitted to unknown target")
		return
	}
	t.Frames = append(t.Frames, frame)
	released := b.collect()
	b.m.Unlock()

	b.release(released)
}

// collect removes the resources that are no longer used if
// AutoRelease is set. b.m must be held.
func (b *Backend) collect() []*Resource {
	if !b.AutoRelease {
		return nil
	}

	used := make(map[resource.ID]struct{})
	for _, t := range b.targets {
		if t.Destroyed || (len(t.Frames) == 0) {
			continue
		}
		for _, q := range t.Frames[len(t.Frames)-1].Quads {
			used[q.Resource] = struct{}{}
		}
	}

	var released []*Resource
	for _, id := range b.liveLocked() {
		if _, ok := used[id]; ok {
			continue
		}
		released = append(released, b.resources[id])
		delete(b.resources, id)
	}
	return released
}

func (b *Backend) release(rs []*Resource) {
	for _, r := range rs {
		r.notify.Released(r.ID, 0, false)
	}
}

// Release reports that the backend is done with the resource id.
func (b *Backend) Release(id resource.ID, fence resource.Fence, lost bool) error {
	b.m.Lock()
	r, ok := b.resources[id]
	delete(b.resources, id)
	b.m.Unlock()

	if !ok {
		return fmt.Errorf("release %v: %w", id, ErrUnknownResource)
	}

	r.notify.Released(id, fence, lost)
	return nil
}

// Draw reports that the latest frame submitted to the target was
// drawn at t.
func (b *Backend) Draw(id surf.TargetID, t time.Time) error {
	frame, err := b.LastFrame(id)
	if err != nil {
		return fmt.Errorf("draw %v: %w", id, err)
	}

	frame.Drawn(t)
	return nil
}

// DrawAll draws the latest frame of every live target.
func (b *Backend) DrawAll(t time.Time) error {
	var errs []error
	for _, id := range b.Targets() {
		if _, err := b.LastFrame(id); errors.Is(err, ErrNoFrame) {
			continue
		}
		errs = append(errs, b.Draw(id, t))
	}
	return errors.Join(errs...)
}

func (b *Backend) liveLocked() []resource.ID {
	ids := make([]resource.ID, 0, len(b.resources))
	for id := range b.resources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Live returns the IDs of the resources that have not been released.
func (b *Backend) Live() []resource.ID {
	b.m.Lock()
	defer b.m.Unlock()

	return b.liveLocked()
}

// Resource returns the live resource with the given ID.
func (b *Backend) Resource(id resource.ID) (Resource, bool) {
	b.m.Lock()
	defer b.m.Unlock()

	r, ok := b.resources[id]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Targets returns the IDs of every target that has not been
// destroyed, in the order that they were created.
func (b *Backend) Targets() []surf.TargetID {
	b.m.Lock()
	defer b.m.Unlock()

	var ids []surf.TargetID
	for _, id := range b.order {
		if !b.targets[id].Destroyed {
			ids = append(ids, id)
		}
	}
	return ids
}

// Destroyed returns the IDs of every target that has been destroyed,
// in the order that they were created.
func (b *Backend) Destroyed() []surf.TargetID {
	b.m.Lock()
	defer b.m.Unlock()

	var ids []surf.TargetID
	for _, id := range b.order {
		if b.targets[id].Destroyed {
			ids = append(ids, id)
		}
	}
	return ids
}

// Frames returns every frame that was submitted to the target.
func (b *Backend) Frames(id surf.TargetID) []surf.Frame {
	b.m.Lock()
	defer b.m.Unlock()

	t, ok := b.targets[id]
	if !ok {
		return nil
	}
	return slices.Clone(t.Frames)
}

// LastFrame returns the latest frame that was submitted to the target.
func (b *Backend) LastFrame(id surf.TargetID) (surf.Frame, error) {
	b.m.Lock()
	defer b.m.Unlock()

	t, ok := b.targets[id]
	if !ok {
		return surf.Frame{}, ErrUnknownTarget
	}
	if len(t.Frames) == 0 {
		return surf.Frame{}, ErrNoFrame
	}
	return t.Frames[len(t.Frames)-1], nil
}

// Submissions returns the total number of frames submitted to every
// target.
func (b *Backend) Submissions() (n int) {
	b.m.Lock()
	defer b.m.Unlock()

	for _, t := range b.targets {
		n += len(t.Frames)
	}
	return n
}
