package surf

import (
	"image"

	"deedles.dev/surf/internal/set"
	"golang.org/x/exp/slices"
)

// SubSurface is the role of a surface that is shown as part of
// another surface.
type SubSurface struct {
	surface *Surface
	parent  *Surface
	desync  bool
}

// parentSurface returns the surface's parent in the sub-surface tree.
func (s *Surface) parentSurface() *Surface {
	sub, ok := s.delegate.(*SubSurface)
	if !ok {
		return nil
	}
	return sub.parent
}

// isAncestor returns true if a is s or is above s in the tree.
func (s *Surface) isAncestor(a *Surface) bool {
	seen := make(set.Set[*Surface])
	for p := s; p != nil; p = p.parentSurface() {
		if p == a {
			return true
		}
		if seen.Has(p) {
			return false
		}
		seen.Add(p)
	}
	return false
}

func (s *Surface) pendingIndex(child *Surface) int {
	return slices.IndexFunc(s.pendingSubs, func(e subSurfaceEntry) bool { return e.surface == child })
}

// AddSubSurface makes child a child of s, above all of its other
// children, and gives it the sub-surface role. The change takes
// effect when s is next committed.
func (s *Surface) AddSubSurface(child *Surface) (*SubSurface, error) {
	const op = "add sub-surface"

	if !s.alive(op) {
		return nil, ErrDestroyed
	}
	if child.destroyed || child.destroying {
		return nil, s.reject(op, child, ErrDestroyed)
	}
	if s.isAncestor(child) {
		return nil, s.reject(op, child, ErrCycle)
	}
	if child.delegate != nil {
		return nil, s.reject(op, child, ErrHasRole)
	}

	sub := SubSurface{surface: child, parent: s}
	err := child.SetDelegate(RoleSubSurface, &sub)
	if err != nil {
		return nil, err
	}

	s.pendingSubs = append(s.pendingSubs, subSurfaceEntry{surface: child})
	s.childrenChanged = true
	return &sub, nil
}

// RemoveSubSurface removes child from s and takes away its role. The
// child is not destroyed.
func (s *Surface) RemoveSubSurface(child *Surface) error {
	const op = "remove sub-surface"

	if !s.alive(op) {
		return ErrDestroyed
	}
	i := s.pendingIndex(child)
	if i < 0 {
		return s.reject(op, child, ErrNotChild)
	}

	s.pendingSubs = slices.Delete(s.pendingSubs, i, i+1)
	s.childrenChanged = true

	if sub, ok := child.delegate.(*SubSurface); ok && (sub.parent == s) {
		sub.parent = nil
		child.ClearDelegate()
	}
	return nil
}

// SetSubSurfacePosition sets the position of child relative to s.
func (s *Surface) SetSubSurfacePosition(child *Surface, pos image.Point) error {
	const op = "set sub-surface position"

	if !s.alive(op) {
		return ErrDestroyed
	}
	i := s.pendingIndex(child)
	if i < 0 {
		return s.reject(op, child, ErrNotChild)
	}

	s.pendingSubs[i].position = pos
	return nil
}

// PlaceAbove moves child so that it is directly above ref. If ref is s
// itself, child is moved to the bottom of the stack.
func (s *Surface) PlaceAbove(child, ref *Surface) error {
	const op = "place above"

	if !s.alive(op) {
		return ErrDestroyed
	}
	if child == ref {
		return s.reject(op, child, ErrSelfReference)
	}
	i := s.pendingIndex(child)
	if i < 0 {
		return s.reject(op, child, ErrNotChild)
	}

	if ref == s {
		entry := s.pendingSubs[i]
		s.pendingSubs = slices.Insert(slices.Delete(s.pendingSubs, i, i+1), 0, entry)
		return nil
	}

	if s.pendingIndex(ref) < 0 {
		return s.reject(op, child, ErrNotSibling)
	}

	entry := s.pendingSubs[i]
	s.pendingSubs = slices.Delete(s.pendingSubs, i, i+1)
	s.pendingSubs = slices.Insert(s.pendingSubs, s.pendingIndex(ref)+1, entry)
	return nil
}

// PlaceBelow moves child so that it is directly below sibling.
func (s *Surface) PlaceBelow(child, sibling *Surface) error {
	const op = "place below"

	if !s.alive(op) {
		return ErrDestroyed
	}
	if child == sibling {
		return s.reject(op, child, ErrSelfReference)
	}
	i := s.pendingIndex(child)
	if i < 0 {
		return s.reject(op, child, ErrNotChild)
	}
	if (sibling == s) || (s.pendingIndex(sibling) < 0) {
		return s.reject(op, child, ErrNotSibling)
	}

	entry := s.pendingSubs[i]
	s.pendingSubs = slices.Delete(s.pendingSubs, i, i+1)
	s.pendingSubs = slices.Insert(s.pendingSubs, s.pendingIndex(sibling), entry)
	return nil
}

// forget removes child from both child lists without touching its
// role.
func (s *Surface) forget(child *Surface) {
	match := func(e subSurfaceEntry) bool { return e.surface == child }
	if i := slices.IndexFunc(s.pendingSubs, match); i >= 0 {
		s.pendingSubs = slices.Delete(s.pendingSubs, i, i+1)
		s.childrenChanged = true
	}
	if i := slices.IndexFunc(s.subs, match); i >= 0 {
		s.subs = slices.Delete(s.subs, i, i+1)
	}
}

// orphanChildren detaches every child from s.
func (s *Surface) orphanChildren() {
	for _, e := range append(slices.Clone(s.pendingSubs), s.subs...) {
		child := e.surface
		if sub, ok := child.delegate.(*SubSurface); ok && (sub.parent == s) {
			sub.parent = nil
		}
		if child.windowParent == s {
			s.window.RemoveChild(child.window)
			child.windowParent = nil
		}
	}
	s.pendingSubs = nil
	s.subs = nil
}

// Surface returns the surface that the sub-surface is a role of.
func (sub *SubSurface) Surface() *Surface {
	return sub.surface
}

// Parent returns the sub-surface's parent, or nil if the parent has
// been destroyed or the sub-surface has been removed from it.
func (sub *SubSurface) Parent() *Surface {
	return sub.parent
}

func (sub *SubSurface) SetPosition(pos image.Point) error {
	if sub.parent == nil {
		return ErrNotChild
	}
	return sub.parent.SetSubSurfacePosition(sub.surface, pos)
}

func (sub *SubSurface) PlaceAbove(ref *Surface) error {
	if sub.parent == nil {
		return ErrNotChild
	}
	return sub.parent.PlaceAbove(sub.surface, ref)
}

func (sub *SubSurface) PlaceBelow(sibling *Surface) error {
	if sub.parent == nil {
		return ErrNotChild
	}
	return sub.parent.PlaceBelow(sub.surface, sibling)
}

// SetSync puts the sub-surface in synchronized mode, which is the
// default. Commits to a synchronized sub-surface are applied when its
// parent's are.
func (sub *SubSurface) SetSync() {
	sub.desync = false
}

// SetDesync puts the sub-surface in desynchronized mode. If a commit
// was waiting for the parent and the sub-surface is no longer
// synchronized, the commit is applied immediately.
func (sub *SubSurface) SetDesync() {
	if sub.desync {
		return
	}
	sub.desync = true

	if sub.surface.needsCommit && !sub.IsSurfaceSynchronized() {
		sub.surface.CommitHierarchy()
	}
}

// Destroy removes the sub-surface from its parent and takes away the
// role.
func (sub *SubSurface) Destroy() {
	if sub.parent != nil {
		sub.parent.RemoveSubSurface(sub.surface)
		return
	}
	if sub.surface.Delegate() == sub {
		sub.surface.ClearDelegate()
	}
}

func (sub *SubSurface) OnSurfaceCommit() {
	if sub.IsSurfaceSynchronized() {
		return
	}
	sub.surface.CommitHierarchy()
}

// IsSurfaceSynchronized returns true if the sub-surface is in
// synchronized mode or any of its ancestors are synchronized.
func (sub *SubSurface) IsSurfaceSynchronized() bool {
	if !sub.desync {
		return true
	}
	return (sub.parent != nil) && sub.parent.IsSynchronized()
}

func (sub *SubSurface) OnSurfaceDestroying(s *Surface) {
	if sub.parent != nil {
		sub.parent.forget(s)
	}
}
