package ext

import "deedles.dev/surf"

// Security controls whether a surface may be shown on outputs that
// are not secure.
type Security struct {
	base
}

func NewSecurity(s *surf.Surface) (*Security, error) {
	var sec Security
	err := sec.attach(s, securityKey, &sec)
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// OnlyVisibleOnSecureOutput hides the surface on outputs that are not
// secure. It applies to the surface's next commit only.
func (sec *Security) OnlyVisibleOnSecureOutput() error {
	if sec.surface == nil {
		return ErrNoSurface
	}

	sec.surface.SetOnlyVisibleOnSecureOutput(true)
	return nil
}

func (sec *Security) Destroy() {
	s := sec.surface
	if !sec.detach(sec) {
		return
	}

	s.SetOnlyVisibleOnSecureOutput(false)
}

func (sec *Security) OnSurfaceDestroying(*surf.Surface) {
	sec.detach(sec)
}
