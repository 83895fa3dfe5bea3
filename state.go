package surf

import (
	"fmt"
	"image"

	"deedles.dev/surf/region"
	"github.com/chewxy/math32"
)

// BlendMode controls how a surface's contents are combined with what
// is beneath it.
type BlendMode int

const (
	// BlendNormal blends premultiplied contents over the content
	// beneath.
	BlendNormal BlendMode = iota

	// BlendReplace ignores the content's alpha channel and replaces
	// whatever is beneath.
	BlendReplace
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendReplace:
		return "replace"
	}

	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// RectF is a rectangle with fractional coordinates.
type RectF struct {
	X, Y, W, H float32
}

// Empty returns true if r has no area.
func (r RectF) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Scale returns r with every component multiplied by s.
func (r RectF) Scale(s float32) RectF {
	return RectF{X: r.X * s, Y: r.Y * s, W: r.W * s, H: r.H * s}
}

// Size returns the size of r rounded up to whole pixels.
func (r RectF) Size() image.Point {
	return image.Pt(int(math32.Ceil(r.W)), int(math32.Ceil(r.H)))
}

// State is one snapshot of the double-buffered attributes of a
// surface. Clients modify a pending State which replaces the active
// one on commit.
type State struct {
	// BufferScale is the factor by which the attached buffer is larger
	// than the surface. It is never less than 1.
	BufferScale float32

	OpaqueRegion region.Region
	InputRegion  region.Region

	// Viewport, if not zero, is the size the surface is scaled to
	// regardless of the buffer's size.
	Viewport image.Point

	// Crop, if not empty, is the part of the buffer that is shown, in
	// surface coordinates.
	Crop RectF

	BlendMode BlendMode
	Alpha     float32

	// OnlyVisibleOnSecureOutput is reset to false in the pending state
	// after every commit.
	OnlyVisibleOnSecureOutput bool
}

// DefaultState returns the state that a new surface starts with.
func DefaultState() State {
	return State{
		BufferScale: 1,
		InputRegion: region.Everything(),
		Alpha:       1,
	}
}

// Equal returns true if s and o describe the same state. Regions are
// compared by the area that they cover.
func (s State) Equal(o State) bool {
	return (s.BufferScale == o.BufferScale) &&
		s.OpaqueRegion.Equal(o.OpaqueRegion) &&
		s.InputRegion.Equal(o.InputRegion) &&
		(s.Viewport == o.Viewport) &&
		(s.Crop == o.Crop) &&
		(s.BlendMode == o.BlendMode) &&
		(s.Alpha == o.Alpha) &&
		(s.OnlyVisibleOnSecureOutput == o.OnlyVisibleOnSecureOutput)
}

// contentSize returns the size of a surface in surface coordinates
// when it shows a buffer of the given size.
func (s State) contentSize(buf image.Point) image.Point {
	if s.Viewport != (image.Point{}) {
		return s.Viewport
	}
	if !s.Crop.Empty() {
		return s.Crop.Size()
	}
	if buf == (image.Point{}) {
		return image.Point{}
	}

	return image.Pt(
		int(math32.Ceil(float32(buf.X)/s.BufferScale)),
		int(math32.Ceil(float32(buf.Y)/s.BufferScale)),
	)
}

// source returns the part of a buffer of the given size that is
// shown, in buffer pixels.
func (s State) source(buf image.Point) RectF {
	if !s.Crop.Empty() {
		return s.Crop.Scale(s.BufferScale)
	}
	return RectF{W: float32(buf.X), H: float32(buf.Y)}
}
