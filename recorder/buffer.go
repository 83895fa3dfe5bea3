package recorder

import (
	"image"

	"deedles.dev/surf/resource"
)

// Release is one call to Buffer.OnRelease.
type Release struct {
	Fence resource.Fence
	Lost  bool
}

// Buffer is a surf.Buffer without any pixels that counts the calls
// made to it.
type Buffer struct {
	W, H int

	Attaches  int
	Detaches  int
	Uses      int
	Releases  []Release
	Destroyed bool
}

func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h}
}

func (b *Buffer) Size() image.Point { return image.Pt(b.W, b.H) }
func (b *Buffer) Valid() bool       { return !b.Destroyed }
func (b *Buffer) OnAttach()         { b.Attaches++ }
func (b *Buffer) OnDetach()         { b.Detaches++ }
func (b *Buffer) OnUse()            { b.Uses++ }

func (b *Buffer) OnRelease(fence resource.Fence, lost bool) {
	b.Releases = append(b.Releases, Release{Fence: fence, Lost: lost})
}

// Attached returns the number of references that surfaces currently
// hold to the buffer.
func (b *Buffer) Attached() int {
	return b.Attaches - b.Detaches
}
