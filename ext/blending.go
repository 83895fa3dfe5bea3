package ext

import (
	"fmt"

	"deedles.dev/surf"
)

// Equation is a blending equation that a client can request.
type Equation int

const (
	EquationNone Equation = iota
	EquationPremultiplied
	EquationCoverage
)

func (e Equation) String() string {
	switch e {
	case EquationNone:
		return "none"
	case EquationPremultiplied:
		return "premultiplied"
	case EquationCoverage:
		return "coverage"
	}

	return fmt.Sprintf("Equation(%d)", int(e))
}

// Blending controls how a surface is blended with what is beneath it.
type Blending struct {
	base
}

func NewBlending(s *surf.Surface) (*Blending, error) {
	var b Blending
	err := b.attach(s, blendingKey, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Blending) SetBlending(eq Equation) error {
	if b.surface == nil {
		return ErrNoSurface
	}

	switch eq {
	case EquationNone:
		b.surface.SetBlendMode(surf.BlendReplace)
		return nil
	case EquationPremultiplied:
		b.surface.SetBlendMode(surf.BlendNormal)
		return nil
	case EquationCoverage:
		return fmt.Errorf("blending equation %v: %w", eq, ErrUnsupported)
	}

	return surf.ValueError{Field: "blending equation", Value: eq}
}

func (b *Blending) SetAlpha(alpha float32) error {
	if b.surface == nil {
		return ErrNoSurface
	}
	return b.surface.SetAlpha(alpha)
}

// Destroy resets the blend mode and alpha to their defaults.
func (b *Blending) Destroy() {
	s := b.surface
	if !b.detach(b) {
		return
	}

	s.SetBlendMode(surf.BlendNormal)
	s.SetAlpha(1)
}

func (b *Blending) OnSurfaceDestroying(*surf.Surface) {
	b.detach(b)
}
