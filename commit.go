package surf

import (
	"image"
	"time"

	"deedles.dev/surf/internal/debug"
	"deedles.dev/surf/region"
	"deedles.dev/surf/resource"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Commit asks for the surface's pending state to be applied. If the
// surface has a role, the role decides when that happens. Otherwise
// it happens immediately.
func (s *Surface) Commit() {
	if !s.alive("commit") {
		return
	}

	s.needsCommit = true
	if s.delegate != nil {
		s.delegate.OnSurfaceCommit()
		return
	}
	s.CommitHierarchy()
}

// NeedsCommit returns true if the surface has been committed but the
// commit has not yet been applied.
func (s *Surface) NeedsCommit() bool {
	return s.needsCommit
}

// CommitHierarchy applies the surface's commit if it has one waiting,
// submitting a new frame to the backend if anything changed, and then
// does the same for every surface below it. Commits of sub-surfaces
// that were deferred because they are synchronized are applied by
// this walk.
func (s *Surface) CommitHierarchy() {
	if !s.alive("commit hierarchy") {
		return
	}

	if !s.needsCommit {
		for _, sub := range s.subs {
			sub.surface.CommitHierarchy()
		}
		return
	}

	s.applyState()
	s.commitSubSurfaces()
	s.window.SetSize(s.contentSize)
}

func (s *Surface) applyState() {
	s.needsCommit = false

	stateChanged := !s.pending.Equal(s.state)
	if stateChanged || s.childrenChanged {
		s.markNewTarget()
	}
	s.state = s.pending
	s.pending.OnlyVisibleOnSecureOutput = false

	newContents := s.hasPendingContents
	if newContents {
		s.buffer.Take(&s.pendingBuffer)
		s.hasPendingContents = false
		s.updateResource()
	}

	oldSize := s.contentSize
	s.contentSize = image.Point{}
	if s.hasContents {
		s.contentSize = s.state.contentSize(s.bufferSize)
	}

	newTarget := (s.target == 0) || s.needsNewTarget
	if newTarget {
		s.replaceTarget()
	}

	if newTarget || newContents || stateChanged || !s.damage.Empty() || s.callbacks.hasPending() {
		full := newTarget || stateChanged || (oldSize != s.contentSize)
		s.submit(full)
	}
	s.damage = region.Region{}
	s.callbacks.arm(s.frames)
}

// markNewTarget flags the surface and every surface below it as
// needing a new render target.
func (s *Surface) markNewTarget() {
	s.needsNewTarget = true
	for _, sub := range s.pendingSubs {
		sub.surface.markNewTarget()
	}
}

// replaceTarget allocates a new render target. The old one keeps
// being used by the backend until a frame has been drawn to the new
// one.
func (s *Surface) replaceTarget() {
	if s.target != 0 {
		s.retiring = append(s.retiring, s.target)
	}
	s.target = s.comp.config.Backend.CreateTarget()
	s.needsNewTarget = false

	debug.Printf("%v: new target %v (retiring %v)", s, s.target, s.retiring)
}

func (s *Surface) updateResource() {
	s.resourceFailed = false

	buf := s.buffer.Get()
	if buf == nil {
		s.current = resource.Resource{}
		s.hasContents = false
		s.bufferSize = image.Point{}
		return
	}

	s.hasContents = true
	s.bufferSize = buf.Size()

	res, ok := s.ledger.Produce(buf, s.state.OnlyVisibleOnSecureOutput, s.comp.config.Usage)
	if !ok {
		s.log().WithField("size", s.bufferSize).Warn("failed to produce resource, using placeholder")
		s.current = resource.Resource{}
		s.resourceFailed = true
		return
	}
	s.current = res
}

func (s *Surface) quads() []Quad {
	if !s.hasContents {
		return nil
	}

	q := Quad{
		Resource:         s.current.ID,
		Dest:             image.Rectangle{Max: s.contentSize},
		Opaque:           s.state.OpaqueRegion,
		Blend:            s.state.BlendMode,
		Alpha:            s.state.Alpha,
		SecureOutputOnly: s.state.OnlyVisibleOnSecureOutput,
	}
	if s.resourceFailed {
		q.Color = s.comp.config.Placeholder
		return []Quad{q}
	}

	q.Source = s.state.source(s.bufferSize)
	return []Quad{q}
}

func (s *Surface) submit(full bool) {
	damage := s.damage
	if full {
		damage = region.Rect(image.Rectangle{Max: s.contentSize})
	}

	s.frames++
	target, seq := s.target, s.frames
	frame := Frame{
		Size:   s.contentSize,
		Damage: damage,
		Quads:  s.quads(),
		Drawn: func(t time.Time) {
			s.comp.post(func() { s.didDraw(target, seq, t) })
		},
	}

	debug.Log().WithFields(logrus.Fields{
		"surface": s.String(),
		"target":  target,
		"damage":  damage,
		"quads":   len(frame.Quads),
	}).Debug("submit frame")
	s.comp.config.Backend.SubmitFrame(target, frame)
}

// didDraw is run by the owning goroutine when the backend has drawn
// the frame numbered seq, which was submitted to target.
func (s *Surface) didDraw(target TargetID, seq uint64, t time.Time) {
	if s.destroyed || (target != s.target) {
		return
	}

	backend := s.comp.config.Backend
	for _, old := range s.retiring {
		backend.DestroyTarget(old)
	}
	s.retiring = nil

	s.callbacks.run(seq, t)
}

// commitSubSurfaces walks the children in the pending list and then
// brings the window tree in line with that list, which becomes the
// active one.
func (s *Surface) commitSubSurfaces() {
	for _, sub := range s.pendingSubs {
		sub.surface.CommitHierarchy()
	}

	for _, old := range s.subs {
		if slices.ContainsFunc(s.pendingSubs, func(e subSurfaceEntry) bool { return e.surface == old.surface }) {
			continue
		}
		if old.surface.windowParent == s {
			s.window.RemoveChild(old.surface.window)
			old.surface.windowParent = nil
		}
	}

	var prev Window
	for _, sub := range s.pendingSubs {
		child := sub.surface
		if child.windowParent != s {
			if child.windowParent != nil {
				child.windowParent.window.RemoveChild(child.window)
			}
			s.window.AddChild(child.window)
			child.windowParent = s
		}

		if prev == nil {
			s.window.StackChildAtBottom(child.window)
		} else {
			s.window.StackChildAbove(child.window, prev)
		}
		prev = child.window

		child.window.SetPosition(sub.position)
		if child.HasContents() {
			child.window.Show()
		} else {
			child.window.Hide()
		}
	}

	s.subs = slices.Clone(s.pendingSubs)
	s.childrenChanged = false
}
