// Package resource tracks the backend resources that are produced
// from client buffers, and makes sure that every one of them is
// released exactly once.
package resource

import (
	"fmt"
	"image"
	"strings"
)

// ID identifies a resource produced by a backend. The zero ID means
// "no resource".
type ID uint64

// Fence is a synchronization token that a backend hands back when it
// stops using a resource. Zero means that no synchronization is
// necessary.
type Fence uint64

// UsageHint tells a backend how a resource is going to be used.
type UsageHint int

const (
	UsageDefault UsageHint = iota
	UsageTexture
	UsageScanout
)

func (h UsageHint) String() string {
	switch h {
	case UsageDefault:
		return "default"
	case UsageTexture:
		return "texture"
	case UsageScanout:
		return "scanout"
	}

	return "unknown"
}

// ParseUsageHint parses the String form of a UsageHint.
func ParseUsageHint(v string) (UsageHint, error) {
	switch strings.ToLower(v) {
	case "", "default":
		return UsageDefault, nil
	case "texture":
		return UsageTexture, nil
	case "scanout":
		return UsageScanout, nil
	}

	return 0, fmt.Errorf("unknown usage hint %q", v)
}

// Resource is a backend resource that was produced from a buffer.
type Resource struct {
	ID   ID
	Size image.Point
}

// Valid returns true if r refers to an actual resource.
func (r Resource) Valid() bool {
	return r.ID != 0
}

// Buffer is the part of a client buffer that the ledger needs.
type Buffer interface {
	// Size is the size of the buffer in pixels.
	Size() image.Point

	// OnUse is called when a resource has been produced from the
	// buffer.
	OnUse()

	// OnRelease is called exactly once for every call to OnUse, when
	// the backend no longer needs the resource. lost is true if the
	// contents of the resource were lost, such as when it was released
	// because its surface was destroyed.
	OnRelease(fence Fence, lost bool)
}

// Notifier is told by a backend when it no longer uses a resource. It
// may be called from any goroutine.
type Notifier interface {
	Released(id ID, fence Fence, lost bool)
}

// Producer is the part of a backend that turns buffers into
// resources.
type Producer interface {
	// CreateResource wraps buf in a new resource. When the resource is
	// no longer in use, the backend must call notify.Released with the
	// resource's ID exactly once. It must not do so before
	// CreateResource has returned.
	CreateResource(buf Buffer, secureOnly bool, hint UsageHint, notify Notifier) (Resource, error)
}
