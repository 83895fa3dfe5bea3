package surf

import "deedles.dev/surf/resource"

// Buffer is a client-supplied buffer of pixels.
type Buffer interface {
	resource.Buffer

	// OnAttach and OnDetach are called in pairs as the buffer is
	// referenced and stops being referenced by a surface. A surface
	// that replaces a buffer with the same buffer calls OnAttach before
	// OnDetach.
	OnAttach()
	OnDetach()

	// Valid returns false once the client has destroyed the buffer.
	Valid() bool
}

// attachment holds a reference to a buffer while keeping its
// attach count balanced.
type attachment struct {
	buf Buffer
}

// Get returns the buffer, or nil if there isn't one or it has been
// destroyed.
func (a *attachment) Get() Buffer {
	if (a.buf == nil) || !a.buf.Valid() {
		return nil
	}
	return a.buf
}

// Reset replaces the buffer with b, which may be nil.
func (a *attachment) Reset(b Buffer) {
	old := a.buf
	if b != nil {
		b.OnAttach()
	}
	a.buf = b
	if old != nil {
		old.OnDetach()
	}
}

// Take moves the buffer from other into a. The moved buffer is not
// attached again.
func (a *attachment) Take(other *attachment) {
	old := a.buf
	a.buf, other.buf = other.buf, nil
	if old != nil {
		old.OnDetach()
	}
}
