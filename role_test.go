package surf_test

import (
	"testing"

	"deedles.dev/surf"
	"deedles.dev/surf/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observer struct {
	destroyed []*surf.Surface
}

func (o *observer) OnSurfaceDestroying(s *surf.Surface) {
	o.destroyed = append(o.destroyed, s)
}

func TestToplevel(t *testing.T) {
	c, _ := newCompositor(t)
	s := c.CreateSurface()

	top, err := surf.NewToplevel(s)
	require.NoError(t, err)
	assert.Equal(t, surf.RoleToplevel, s.Role())
	assert.False(t, s.IsSynchronized())

	var commits, destroying int
	top.Committed = func() { commits++ }
	top.Destroying = func() { destroying++ }

	s.Attach(recorder.NewBuffer(4, 4))
	s.Commit()
	assert.Equal(t, 1, commits)
	assert.True(t, s.HasContents())

	_, err = surf.NewNotification(s)
	assert.ErrorIs(t, err, surf.ErrHasRole)

	s.Destroy()
	assert.Equal(t, 1, destroying)
}

func TestRoleRelease(t *testing.T) {
	c, _ := newCompositor(t)
	s := c.CreateSurface()

	n, err := surf.NewNotification(s)
	require.NoError(t, err)
	assert.Equal(t, surf.RoleNotification, s.Role())

	n.Destroy()
	assert.Equal(t, surf.RoleNone, s.Role())

	_, err = surf.NewToplevel(s)
	assert.NoError(t, err)
}

func TestObserver(t *testing.T) {
	c, _ := newCompositor(t)
	s := c.CreateSurface()

	var a, b observer
	s.AddObserver(&a)
	s.AddObserver(&a)
	s.AddObserver(&b)
	s.RemoveObserver(&b)

	s.Destroy()
	assert.Equal(t, []*surf.Surface{s}, a.destroyed)
	assert.Empty(t, b.destroyed)
}

func TestProperties(t *testing.T) {
	c, _ := newCompositor(t)
	s := c.CreateSurface()

	assert.True(t, s.SetProperty("key"))
	assert.False(t, s.SetProperty("key"))
	assert.True(t, s.HasProperty("key"))

	s.ClearProperty("key")
	assert.False(t, s.HasProperty("key"))
}
