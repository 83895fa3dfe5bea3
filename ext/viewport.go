package ext

import (
	"image"

	"deedles.dev/surf"
)

// Viewport crops and scales a surface independently of its buffer.
type Viewport struct {
	base
}

func NewViewport(s *surf.Surface) (*Viewport, error) {
	var v Viewport
	err := v.attach(s, viewportKey, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SetSource sets the part of the buffer that is shown, in surface
// coordinates. Passing -1 for everything unsets it.
func (v *Viewport) SetSource(x, y, w, h float32) error {
	if v.surface == nil {
		return ErrNoSurface
	}

	if (x == -1) && (y == -1) && (w == -1) && (h == -1) {
		return v.surface.SetCrop(surf.RectF{})
	}
	if (x < 0) || (y < 0) || (w <= 0) || (h <= 0) {
		return surf.ValueError{Field: "viewport source", Value: surf.RectF{X: x, Y: y, W: w, H: h}}
	}

	return v.surface.SetCrop(surf.RectF{X: x, Y: y, W: w, H: h})
}

// SetDestination sets the size that the surface is scaled to. Passing
// -1 for both unsets it.
func (v *Viewport) SetDestination(w, h int) error {
	if v.surface == nil {
		return ErrNoSurface
	}

	if (w == -1) && (h == -1) {
		return v.surface.SetViewport(image.Point{})
	}
	if (w <= 0) || (h <= 0) {
		return surf.ValueError{Field: "viewport destination", Value: image.Pt(w, h)}
	}

	return v.surface.SetViewport(image.Pt(w, h))
}

// Destroy unsets both the source and the destination. They take
// effect at the surface's next commit.
func (v *Viewport) Destroy() {
	s := v.surface
	if !v.detach(v) {
		return
	}

	s.SetCrop(surf.RectF{})
	s.SetViewport(image.Point{})
}

func (v *Viewport) OnSurfaceDestroying(*surf.Surface) {
	v.detach(v)
}
