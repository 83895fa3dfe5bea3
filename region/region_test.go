package region_test

import (
	"image"
	"testing"

	"deedles.dev/surf/region"
	"github.com/stretchr/testify/assert"
)

func TestUnionOverlapping(t *testing.T) {
	r := region.New(
		image.Rect(0, 0, 10, 10),
		image.Rect(5, 5, 15, 15),
	)

	assert.Equal(t, int64(175), r.Area())
	assert.Equal(t, image.Rect(0, 0, 15, 15), r.Bounds())
	assert.True(t, r.Contains(image.Pt(12, 12)))
	assert.False(t, r.Contains(image.Pt(12, 2)))

	rects := r.Rects()
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			assert.False(t, rects[i].Overlaps(rects[j]), "%v overlaps %v", rects[i], rects[j])
		}
	}
}

func TestUnionContained(t *testing.T) {
	r := region.Rect(image.Rect(0, 0, 100, 100))
	u := r.UnionRect(image.Rect(10, 10, 20, 20))
	assert.Len(t, u.Rects(), 1)
	assert.True(t, u.Equal(r))
}

func TestEqualIgnoresSplit(t *testing.T) {
	a := region.New(image.Rect(0, 0, 10, 5), image.Rect(0, 5, 10, 10))
	b := region.Rect(image.Rect(0, 0, 10, 10))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(region.Rect(image.Rect(0, 0, 10, 11))))
}

func TestSubtract(t *testing.T) {
	r := region.Rect(image.Rect(0, 0, 10, 10)).SubtractRect(image.Rect(2, 2, 8, 8))
	assert.Equal(t, int64(100-36), r.Area())
	assert.False(t, r.Contains(image.Pt(5, 5)))
	assert.True(t, r.Contains(image.Pt(1, 5)))

	assert.True(t, r.Subtract(region.Rect(image.Rect(0, 0, 10, 10))).Empty())
}

func TestIntersect(t *testing.T) {
	r := region.New(image.Rect(0, 0, 10, 10), image.Rect(20, 0, 30, 10))
	i := r.IntersectRect(image.Rect(5, 0, 25, 5))
	assert.True(t, i.Equal(region.New(image.Rect(5, 0, 10, 5), image.Rect(20, 0, 25, 5))))

	assert.True(t, r.IntersectRect(image.Rect(12, 0, 18, 10)).Empty())
	assert.True(t, region.Everything().Intersect(r).Equal(r))
}

func TestEverything(t *testing.T) {
	e := region.Everything()
	assert.True(t, e.Overlaps(image.Rect(-5, -5, 5, 5)))
	assert.True(t, e.Contains(image.Pt(1<<20, -(1<<20))))
	assert.Equal(t, "{everything}", e.String())
	assert.Equal(t, "{}", region.Region{}.String())
}

func TestEmptyRectsIgnored(t *testing.T) {
	r := region.New(image.Rectangle{}, image.Rect(5, 5, 5, 10))
	assert.True(t, r.Empty())
	assert.True(t, r.Equal(region.Region{}))
}

func TestValueSemantics(t *testing.T) {
	a := region.Rect(image.Rect(0, 0, 10, 10))
	b := a.UnionRect(image.Rect(20, 20, 30, 30))
	_ = a.UnionRect(image.Rect(40, 40, 50, 50))

	assert.Equal(t, int64(100), a.Area())
	assert.Equal(t, int64(200), b.Area())
}

func TestTranslate(t *testing.T) {
	r := region.Rect(image.Rect(0, 0, 10, 10)).Translate(image.Pt(5, -5))
	assert.Equal(t, image.Rect(5, -5, 15, 5), r.Bounds())
}
