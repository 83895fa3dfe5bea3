package shm

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"deedles.dev/surf/internal/debug"
	"deedles.dev/surf/resource"
	"deedles.dev/ximage/format"
	"golang.org/x/image/draw"
	"golang.org/x/sys/unix"
)

// Buffer is an ARGB8888 client buffer whose pixels live in shared
// memory. It can be attached to a surface.
type Buffer struct {
	// Release, if not nil, is called when the buffer is no longer
	// attached to any surface and no longer used by any resource,
	// meaning that the client may reuse it.
	Release func()

	w, h int
	file *os.File
	mmap Mmap

	attached  int
	inUse     int
	busy      bool
	lost      bool
	destroyed bool
}

// NewBuffer creates a new w by h buffer.
func NewBuffer(w, h int) (*Buffer, error) {
	if (w <= 0) || (h <= 0) {
		return nil, fmt.Errorf("invalid buffer size %vx%v", w, h)
	}

	b := Buffer{w: w, h: h}

	file, err := Create()
	if err != nil {
		return nil, fmt.Errorf("create SHM file: %w", err)
	}
	b.file = file

	err = file.Truncate(int64(b.Len()))
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("truncate SHM file: %w", err)
	}

	mmap, err := MapShared(file, b.Len(), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("mmap SHM file: %w", err)
	}
	b.mmap = mmap

	return &b, nil
}

// Destroy unmaps the buffer and closes its file. The buffer is no
// longer valid afterwards, but surfaces that it is attached to will
// still call its lifecycle methods.
func (b *Buffer) Destroy() error {
	if b.destroyed {
		return nil
	}
	b.destroyed = true

	var file error
	if b.file != nil {
		file = b.file.Close()
	}
	return errors.Join(b.mmap.Unmap(), file)
}

func (b *Buffer) Stride() int {
	return b.w * 4
}

func (b *Buffer) Len() int {
	return b.Stride() * b.h
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.w, b.h)
}

// Image returns an image that draws directly into the buffer's
// memory. It must not be used after the buffer is destroyed.
func (b *Buffer) Image() draw.Image {
	return &format.Image{
		Format: format.ARGB8888,
		Rect:   b.Bounds(),
		Pix:    b.mmap,
	}
}

// Fill sets every pixel of the buffer to c.
func (b *Buffer) Fill(c color.Color) {
	img := b.Image()
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Scale draws src into the buffer, stretched to cover all of it.
func (b *Buffer) Scale(src image.Image) {
	img := b.Image()
	draw.ApproxBiLinear.Scale(img, img.Bounds(), src, src.Bounds(), draw.Src, nil)
}

func (b *Buffer) Size() image.Point {
	return image.Pt(b.w, b.h)
}

func (b *Buffer) Valid() bool {
	return !b.destroyed
}

// Busy returns true if the buffer has been handed to a surface and
// has not yet been released.
func (b *Buffer) Busy() bool {
	return b.busy
}

// Lost returns true if the last release of a resource produced from
// the buffer reported that its contents were lost.
func (b *Buffer) Lost() bool {
	return b.lost
}

func (b *Buffer) OnAttach() {
	b.attached++
	b.busy = true
}

func (b *Buffer) OnDetach() {
	if b.attached == 0 {
		debug.Log().WithField("size", b.Size()).Warn("shm buffer detached more times than attached")
		return
	}
	b.attached--
	b.maybeRelease()
}

func (b *Buffer) OnUse() {
	b.inUse++
	b.busy = true
}

func (b *Buffer) OnRelease(fence resource.Fence, lost bool) {
	if b.inUse == 0 {
		debug.Log().WithField("size", b.Size()).Warn("shm buffer released more times than used")
		return
	}
	b.inUse--
	b.lost = lost
	b.maybeRelease()
}

func (b *Buffer) maybeRelease() {
	if !b.busy || (b.attached > 0) || (b.inUse > 0) {
		return
	}

	b.busy = false
	debug.Printf("shm buffer %vx%v released", b.w, b.h)
	if b.Release != nil {
		b.Release()
	}
}
