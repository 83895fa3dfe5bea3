package surf

// Toplevel is the role of a surface that is shown on its own, such as
// an application window. Commits to it are applied immediately.
type Toplevel struct {
	// Committed, if not nil, is called after every applied commit.
	Committed func()

	// Destroying, if not nil, is called when the surface is being
	// destroyed.
	Destroying func()

	surface *Surface
}

// NewToplevel gives s the toplevel role.
func NewToplevel(s *Surface) (*Toplevel, error) {
	t := Toplevel{surface: s}
	err := s.SetDelegate(RoleToplevel, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Toplevel) Surface() *Surface {
	return t.surface
}

func (t *Toplevel) OnSurfaceCommit() {
	t.surface.CommitHierarchy()
	if t.Committed != nil {
		t.Committed()
	}
}

func (t *Toplevel) IsSurfaceSynchronized() bool {
	return false
}

func (t *Toplevel) OnSurfaceDestroying(*Surface) {
	if t.Destroying != nil {
		t.Destroying()
	}
}

// Destroy removes the role from the surface.
func (t *Toplevel) Destroy() {
	if t.surface.Delegate() == t {
		t.surface.ClearDelegate()
	}
}

// Notification is the role of a surface that shows a transient
// notification.
type Notification struct {
	Committed  func()
	Destroying func()

	surface *Surface
}

func NewNotification(s *Surface) (*Notification, error) {
	n := Notification{surface: s}
	err := s.SetDelegate(RoleNotification, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *Notification) Surface() *Surface {
	return n.surface
}

func (n *Notification) OnSurfaceCommit() {
	n.surface.CommitHierarchy()
	if n.Committed != nil {
		n.Committed()
	}
}

func (n *Notification) IsSurfaceSynchronized() bool {
	return false
}

func (n *Notification) OnSurfaceDestroying(*Surface) {
	if n.Destroying != nil {
		n.Destroying()
	}
}

func (n *Notification) Destroy() {
	if n.surface.Delegate() == n {
		n.surface.ClearDelegate()
	}
}
