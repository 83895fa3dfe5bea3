package surf

import (
	"image"
	"image/color"
	"time"

	"deedles.dev/surf/region"
	"deedles.dev/surf/resource"
)

// TargetID identifies a render target created by a Backend. The zero
// TargetID is never a valid target.
type TargetID uint64

// Quad is a single textured or solid-colored rectangle in a Frame.
type Quad struct {
	// Resource is the resource to draw. If it is zero, the quad is
	// filled with Color instead.
	Resource resource.ID
	Color    color.Color

	// Source is the part of the resource to draw, in buffer pixels.
	Source RectF

	// Dest is where the quad is drawn, in surface coordinates.
	Dest image.Rectangle

	Opaque           region.Region
	Blend            BlendMode
	Alpha            float32
	SecureOutputOnly bool
}

// Frame is the description of a surface's contents that is handed to
// a Backend.
type Frame struct {
	Size   image.Point
	Damage region.Region
	Quads  []Quad

	// Drawn must be called by the backend once the frame has been
	// drawn. It may be called from any goroutine.
	Drawn func(time.Time)
}

// Backend does the actual compositing. Its methods are called only by
// the goroutine that owns the surfaces, but it may report that
// resources have been released and that frames have been drawn from
// any goroutine.
type Backend interface {
	resource.Producer

	// CreateTarget allocates a new render target.
	CreateTarget() TargetID

	// DestroyTarget frees a render target. No more frames will be
	// submitted to it.
	DestroyTarget(TargetID)

	// SubmitFrame hands a new frame to a render target.
	SubmitFrame(TargetID, Frame)
}

// Window is a node in the host window tree that positions, stacks, and
// shows surfaces. Each surface owns exactly one.
type Window interface {
	// AddChild makes child a child of the window, removing it from its
	// previous parent if it has one.
	AddChild(child Window)

	// RemoveChild removes child from the window. It does nothing if
	// child is not a child of the window.
	RemoveChild(child Window)

	StackChildAbove(child, sibling Window)
	StackChildAtBottom(child Window)

	SetPosition(image.Point)
	SetSize(image.Point)
	Show()
	Hide()
}

type nopWindow struct{}

func (nopWindow) AddChild(Window)                {}
func (nopWindow) RemoveChild(Window)             {}
func (nopWindow) StackChildAbove(Window, Window) {}
func (nopWindow) StackChildAtBottom(Window)      {}
func (nopWindow) SetPosition(image.Point)        {}
func (nopWindow) SetSize(image.Point)            {}
func (nopWindow) Show()                          {}
func (nopWindow) Hide()                          {}
