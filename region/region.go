// Package region implements sets of pixels described by axis-aligned
// integer rectangles, as used for damage, opaque and input regions.
package region

import (
	"fmt"
	"image"
	"math"
	"strings"

	"deedles.dev/surf/internal/xslices"
	"golang.org/x/exp/slices"
)

// Largest is the rectangle that Everything covers. It is kept well
// inside the int32 range so that translating it by any reasonable
// offset does not overflow.
var Largest = image.Rect(math.MinInt32/2, math.MinInt32/2, math.MaxInt32/2, math.MaxInt32/2)

// Region is a set of pixels. It is stored as a list of
// non-overlapping rectangles, but two regions that cover the same
// pixels are Equal no matter how they are split up.
//
// The zero Region is empty. Regions are values: no method modifies
// its receiver, so a Region can be copied freely.
type Region struct {
	rects []image.Rectangle
}

// New returns the union of rects.
func New(rects ...image.Rectangle) Region {
	var r Region
	for _, rect := range rects {
		r = r.UnionRect(rect)
	}
	return r
}

// Rect returns a region covering exactly rect.
func Rect(rect image.Rectangle) Region {
	rect = rect.Canon()
	if rect.Empty() {
		return Region{}
	}
	return Region{rects: []image.Rectangle{rect}}
}

// Everything returns a region covering Largest.
func Everything() Region {
	return Rect(Largest)
}

// Empty returns true if the region contains no pixels.
func (r Region) Empty() bool {
	return len(r.rects) == 0
}

// Rects returns a copy of the rectangles that make up the region. The
// rectangles do not overlap.
func (r Region) Rects() []image.Rectangle {
	return slices.Clone(r.rects)
}

// Bounds returns the smallest rectangle containing the whole region.
func (r Region) Bounds() (b image.Rectangle) {
	for _, rect := range r.rects {
		b = b.Union(rect)
	}
	return b
}

// Area returns the number of pixels in the region.
func (r Region) Area() (area int64) {
	for _, rect := range r.rects {
		area += int64(rect.Dx()) * int64(rect.Dy())
	}
	return area
}

// Contains returns true if p is in the region.
func (r Region) Contains(p image.Point) bool {
	return slices.ContainsFunc(r.rects, func(rect image.Rectangle) bool {
		return p.In(rect)
	})
}

// Overlaps returns true if any pixel of rect is in the region.
func (r Region) Overlaps(rect image.Rectangle) bool {
	return slices.ContainsFunc(r.rects, func(v image.Rectangle) bool {
		return v.Overlaps(rect)
	})
}

// UnionRect returns the union of r and rect.
func (r Region) UnionRect(rect image.Rectangle) Region {
	rect = rect.Canon()
	if rect.Empty() {
		return r
	}

	pieces := []image.Rectangle{rect}
	for _, v := range r.rects {
		pieces = xslices.FlatMap(pieces, func(p image.Rectangle) []image.Rectangle {
			return cut(p, v)
		})
		if len(pieces) == 0 {
			return r
		}
	}

	rects := make([]image.Rectangle, 0, len(r.rects)+len(pieces))
	rects = append(rects, r.rects...)
	return Region{rects: append(rects, pieces...)}
}

// Union returns the union of r and o.
func (r Region) Union(o Region) Region {
	for _, rect := range o.rects {
		r = r.UnionRect(rect)
	}
	return r
}

// SubtractRect returns the pixels of r that are not in rect.
func (r Region) SubtractRect(rect image.Rectangle) Region {
	rect = rect.Canon()
	if rect.Empty() || r.Empty() {
		return r
	}

	return Region{rects: xslices.FlatMap(r.rects, func(v image.Rectangle) []image.Rectangle {
		return cut(v, rect)
	})}
}

// Subtract returns the pixels of r that are not in o.
func (r Region) Subtract(o Region) Region {
	for _, rect := range o.rects {
		r = r.SubtractRect(rect)
	}
	return r
}

// IntersectRect returns the pixels of r that are also in rect.
func (r Region) IntersectRect(rect image.Rectangle) Region {
	rects := make([]image.Rectangle, 0, len(r.rects))
	for _, v := range r.rects {
		rects = append(rects, v.Intersect(rect))
	}
	rects = xslices.Filter(rects, func(v image.Rectangle) bool { return !v.Empty() })
	if len(rects) == 0 {
		return Region{}
	}
	return Region{rects: rects}
}

// Intersect returns the pixels that are in both r and o.
func (r Region) Intersect(o Region) (out Region) {
	for _, rect := range o.rects {
		out = out.Union(r.IntersectRect(rect))
	}
	return out
}

// Translate returns r moved by p.
func (r Region) Translate(p image.Point) Region {
	if r.Empty() {
		return r
	}

	rects := make([]image.Rectangle, 0, len(r.rects))
	for _, v := range r.rects {
		rects = append(rects, v.Add(p))
	}
	return Region{rects: rects}
}

// Equal returns true if r and o contain exactly the same pixels.
func (r Region) Equal(o Region) bool {
	if r.Area() != o.Area() {
		return false
	}
	return r.Subtract(o).Empty() && o.Subtract(r).Empty()
}

func (r Region) String() string {
	if r.Empty() {
		return "{}"
	}
	if r.Equal(Everything()) {
		return "{everything}"
	}

	parts := make([]string, 0, len(r.rects))
	for _, rect := range r.rects {
		parts = append(parts, rect.String())
	}
	return fmt.Sprintf("{%v}", strings.Join(parts, " "))
}

// cut returns the parts of a that are not covered by b, as at most
// four non-overlapping rectangles.
func cut(a, b image.Rectangle) []image.Rectangle {
	i := a.Intersect(b)
	if i.Empty() {
		return []image.Rectangle{a}
	}

	out := make([]image.Rectangle, 0, 4)
	if a.Min.Y < i.Min.Y {
		out = append(out, image.Rect(a.Min.X, a.Min.Y, a.Max.X, i.Min.Y))
	}
	if i.Max.Y < a.Max.Y {
		out = append(out, image.Rect(a.Min.X, i.Max.Y, a.Max.X, a.Max.Y))
	}
	if a.Min.X < i.Min.X {
		out = append(out, image.Rect(a.Min.X, i.Min.Y, i.Min.X, i.Max.Y))
	}
	if i.Max.X < a.Max.X {
		out = append(out, image.Rect(i.Max.X, i.Min.Y, a.Max.X, i.Max.Y))
	}
	return out
}
