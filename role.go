package surf

import "golang.org/x/exp/slices"

// Role is the kind of object that is responsible for a surface.
type Role int

const (
	RoleNone Role = iota
	RoleToplevel
	RoleSubSurface
	RoleNotification
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleToplevel:
		return "toplevel"
	case RoleSubSurface:
		return "sub-surface"
	case RoleNotification:
		return "notification"
	}

	return "unknown"
}

// Delegate is the object that fulfills a surface's role.
type Delegate interface {
	// OnSurfaceCommit is called when the client commits the surface. The
	// delegate decides when the commit is actually applied, usually by
	// calling CommitHierarchy.
	OnSurfaceCommit()

	// IsSurfaceSynchronized returns true if the surface's commits are
	// only applied when its parent's are.
	IsSurfaceSynchronized() bool

	// OnSurfaceDestroying is called at the start of the surface's
	// destruction.
	OnSurfaceDestroying(*Surface)
}

// Observer is notified of the end of a surface's life.
type Observer interface {
	OnSurfaceDestroying(*Surface)
}

// SetDelegate gives the surface a role. A surface can only have one
// role at a time.
func (s *Surface) SetDelegate(role Role, d Delegate) error {
	if !s.alive("set delegate") {
		return ErrDestroyed
	}
	if s.delegate != nil {
		return s.reject("set delegate", nil, ErrHasRole)
	}

	s.role = role
	s.delegate = d
	return nil
}

// ClearDelegate removes the surface's role, if it has one.
func (s *Surface) ClearDelegate() {
	s.role = RoleNone
	s.delegate = nil
}

// Role returns the surface's current role.
func (s *Surface) Role() Role {
	return s.role
}

// Delegate returns the surface's delegate, or nil if it doesn't have
// one.
func (s *Surface) Delegate() Delegate {
	return s.delegate
}

// IsSynchronized returns true if commits to the surface are deferred
// until its parent commits.
func (s *Surface) IsSynchronized() bool {
	return (s.delegate != nil) && s.delegate.IsSurfaceSynchronized()
}

// AddObserver registers o to be told about the surface's
// destruction.
func (s *Surface) AddObserver(o Observer) {
	if slices.Contains(s.observers, o) {
		return
	}
	s.observers = append(s.observers, o)
}

// RemoveObserver unregisters o.
func (s *Surface) RemoveObserver(o Observer) {
	i := slices.Index(s.observers, o)
	if i < 0 {
		return
	}
	s.observers = slices.Delete(s.observers, i, i+1)
}

// SetProperty marks the surface with key. It returns false if the
// surface was already marked.
func (s *Surface) SetProperty(key string) bool {
	if s.props.Has(key) {
		return false
	}
	s.props.Add(key)
	return true
}

// HasProperty returns true if the surface is marked with key.
func (s *Surface) HasProperty(key string) bool {
	return s.props.Has(key)
}

// ClearProperty removes the mark key from the surface.
func (s *Surface) ClearProperty(key string) {
	s.props.Delete(key)
}
