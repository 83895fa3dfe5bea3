package surf

import (
	"fmt"
	"image"

	"deedles.dev/surf/internal/debug"
	"deedles.dev/surf/internal/set"
	"deedles.dev/surf/region"
	"deedles.dev/surf/resource"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

type subSurfaceEntry struct {
	surface  *Surface
	position image.Point
}

// Surface is a rectangular area that a client draws into. Changes to a
// surface are made to its pending state and only take effect when the
// surface is committed.
type Surface struct {
	comp   *Compositor
	handle Handle
	window Window
	ledger *resource.Ledger

	pending State
	state   State

	pendingBuffer      attachment
	buffer             attachment
	hasPendingContents bool
	damage             region.Region
	callbacks          callbackQueue

	pendingSubs     []subSurfaceEntry
	subs            []subSurfaceEntry
	childrenChanged bool

	role      Role
	delegate  Delegate
	observers []Observer
	props     set.Set[string]

	current        resource.Resource
	resourceFailed bool
	hasContents    bool
	bufferSize     image.Point
	contentSize    image.Point

	target       TargetID
	retiring     []TargetID
	frames       uint64
	windowParent *Surface

	needsCommit    bool
	needsNewTarget bool
	destroying     bool
	destroyed      bool
}

func newSurface(c *Compositor) *Surface {
	s := Surface{
		comp:    c,
		window:  c.config.NewWindow(),
		pending: DefaultState(),
		state:   DefaultState(),
		props:   make(set.Set[string]),
	}
	s.ledger = resource.NewLedger(c.config.Backend, c.post)

	return &s
}

func (s *Surface) String() string {
	return fmt.Sprintf("surface@%v", s.handle)
}

func (s *Surface) log() *logrus.Entry {
	return debug.Log().WithField("surface", s.String())
}

// alive returns false and logs a protocol violation if the surface
// has been destroyed.
func (s *Surface) alive(op string) bool {
	if !s.destroyed && !s.destroying {
		return true
	}

	s.log().WithField("op", op).Warn("operation on destroyed surface")
	return false
}

// reject logs a rejected change to the surface tree and returns it as
// an error.
func (s *Surface) reject(op string, child *Surface, err error) error {
	herr := HierarchyError{Op: op, Surface: s.handle, Err: err}
	entry := s.log().WithField("op", op)
	if child != nil {
		herr.Child = child.handle
		entry = entry.WithField("child", child.String())
	}
	entry.Warn(err)
	return &herr
}

func (s *Surface) Handle() Handle {
	return s.handle
}

// Window returns the host window that shows the surface.
func (s *Surface) Window() Window {
	return s.window
}

// Destroyed returns true once Destroy has been called.
func (s *Surface) Destroyed() bool {
	return s.destroyed
}

// Attach sets the buffer that the surface will show after its next
// commit. A nil buffer removes the surface's contents.
func (s *Surface) Attach(buf Buffer) {
	if !s.alive("attach") {
		return
	}

	s.pendingBuffer.Reset(buf)
	s.hasPendingContents = true
}

// Damage marks part of the surface as having changed.
func (s *Surface) Damage(r image.Rectangle) {
	if !s.alive("damage") {
		return
	}

	s.damage = s.damage.UnionRect(r)
}

// RequestFrameCallback asks for cb to be called after the next commit
// has been drawn.
func (s *Surface) RequestFrameCallback(cb FrameCallback) {
	if !s.alive("frame") {
		return
	}

	s.callbacks.request(cb)
}

// SetOpaqueRegion sets the part of the surface that is known to be
// fully opaque.
func (s *Surface) SetOpaqueRegion(r region.Region) {
	if !s.alive("set opaque region") {
		return
	}
	s.pending.OpaqueRegion = r
}

// SetInputRegion sets the part of the surface that accepts input.
func (s *Surface) SetInputRegion(r region.Region) {
	if !s.alive("set input region") {
		return
	}
	s.pending.InputRegion = r
}

// SetBufferScale sets the ratio of buffer pixels to surface units.
func (s *Surface) SetBufferScale(scale float32) error {
	if !s.alive("set buffer scale") {
		return ErrDestroyed
	}
	if !(scale >= 1) {
		return ValueError{Field: "buffer scale", Value: scale}
	}

	s.pending.BufferScale = scale
	return nil
}

// SetViewport sets the size that the surface is scaled to. The zero
// size removes the viewport.
func (s *Surface) SetViewport(size image.Point) error {
	if !s.alive("set viewport") {
		return ErrDestroyed
	}
	if (size != image.Point{}) && ((size.X <= 0) || (size.Y <= 0)) {
		return ValueError{Field: "viewport", Value: size}
	}

	s.pending.Viewport = size
	return nil
}

// SetCrop sets the part of the buffer that is shown, in surface
// coordinates. The zero RectF removes the crop.
func (s *Surface) SetCrop(r RectF) error {
	if !s.alive("set crop") {
		return ErrDestroyed
	}
	if (r != RectF{}) && ((r.X < 0) || (r.Y < 0) || r.Empty()) {
		return ValueError{Field: "crop", Value: r}
	}

	s.pending.Crop = r
	return nil
}

// SetBlendMode sets how the surface's contents are combined with what
// is below them.
func (s *Surface) SetBlendMode(mode BlendMode) {
	if !s.alive("set blend mode") {
		return
	}
	s.pending.BlendMode = mode
}

// SetAlpha sets the opacity of the whole surface, from 0 to 1.
func (s *Surface) SetAlpha(alpha float32) error {
	if !s.alive("set alpha") {
		return ErrDestroyed
	}
	if !(alpha >= 0) || (alpha > 1) {
		return ValueError{Field: "alpha", Value: alpha}
	}

	s.pending.Alpha = alpha
	return nil
}

// SetOnlyVisibleOnSecureOutput hides the surface's contents on outputs
// that are not secure, such as screenshots. It only applies to the
// next commit.
func (s *Surface) SetOnlyVisibleOnSecureOutput(only bool) {
	if !s.alive("set only visible on secure output") {
		return
	}
	s.pending.OnlyVisibleOnSecureOutput = only
}

// State returns the surface's active state.
func (s *Surface) State() State {
	return s.state
}

// PendingState returns the state that will become active at the next
// commit.
func (s *Surface) PendingState() State {
	return s.pending
}

// Resource returns the resource that the surface is currently showing.
func (s *Surface) Resource() resource.Resource {
	return s.current
}

// HasContents returns true if a buffer was attached at the time of the
// last applied commit.
func (s *Surface) HasContents() bool {
	return s.hasContents
}

// ContentSize returns the size of the surface in surface coordinates.
func (s *Surface) ContentSize() image.Point {
	return s.contentSize
}

// Target returns the render target that the surface's frames are
// submitted to, or zero if it has never been committed.
func (s *Surface) Target() TargetID {
	return s.target
}

func (s *Surface) hitRegion() region.Region {
	return s.state.InputRegion.IntersectRect(image.Rectangle{Max: s.contentSize})
}

// HitTestRect returns true if r overlaps the part of the surface that
// accepts input.
func (s *Surface) HitTestRect(r image.Rectangle) bool {
	return s.hitRegion().Overlaps(r)
}

// HitTestBounds returns the bounds of the part of the surface that
// accepts input.
func (s *Surface) HitTestBounds() image.Rectangle {
	return s.hitRegion().Bounds()
}

// SubSurfaces returns the surface's children, bottom first, as of the
// last applied commit.
func (s *Surface) SubSurfaces() []*Surface {
	subs := make([]*Surface, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub.surface)
	}
	return subs
}

// Destroy destroys the surface. Any frame callbacks are cancelled and
// any resources that the backend has not yet released are released as
// lost before it returns. Children of the surface are not destroyed,
// but are removed from the window tree.
func (s *Surface) Destroy() {
	if !s.alive("destroy") {
		return
	}
	s.destroying = true
	debug.Printf("%v destroying", s)

	if s.delegate != nil {
		s.delegate.OnSurfaceDestroying(s)
	}
	for _, o := range slices.Clone(s.observers) {
		o.OnSurfaceDestroying(s)
	}
	s.observers = nil

	if s.windowParent != nil {
		s.windowParent.forget(s)
		s.windowParent.window.RemoveChild(s.window)
		s.windowParent = nil
	}
	s.orphanChildren()

	s.pendingBuffer.Reset(nil)
	s.buffer.Reset(nil)
	s.callbacks.cancel()

	s.ledger.Drain()
	s.ledger.Unref()

	backend := s.comp.config.Backend
	for _, t := range s.retiring {
		backend.DestroyTarget(t)
	}
	s.retiring = nil
	if s.target != 0 {
		backend.DestroyTarget(s.target)
		s.target = 0
	}

	s.comp.surfaces.Delete(uint32(s.handle))
	s.destroyed = true
}
