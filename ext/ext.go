// Package ext implements the optional extension objects that clients
// can attach to a surface to control how it is scaled, secured, and
// blended. A surface can have at most one of each.
package ext

import (
	"errors"

	"deedles.dev/surf"
	"deedles.dev/surf/internal/debug"
)

var (
	ErrExists      = errors.New("surface already has an extension of that kind")
	ErrNoSurface   = errors.New("surface has been destroyed")
	ErrUnsupported = errors.New("unsupported value")
)

const (
	viewportKey = "ext.viewport"
	securityKey = "ext.security"
	blendingKey = "ext.blending"
)

// base holds the parts that every extension object has in common.
type base struct {
	key     string
	surface *surf.Surface
}

func (e *base) attach(s *surf.Surface, key string, o surf.Observer) error {
	if !s.SetProperty(key) {
		debug.Log().WithField("surface", s.String()).WithField("extension", key).Warn(ErrExists)
		return ErrExists
	}

	e.key = key
	e.surface = s
	s.AddObserver(o)
	return nil
}

// detach disconnects the extension from its surface. It returns false
// if it was already disconnected.
func (e *base) detach(o surf.Observer) bool {
	if e.surface == nil {
		return false
	}

	e.surface.RemoveObserver(o)
	e.surface.ClearProperty(e.key)
	e.surface = nil
	return true
}

// Surface returns the surface that the extension is attached to, or
// nil if it has been destroyed.
func (e *base) Surface() *surf.Surface {
	return e.surface
}
