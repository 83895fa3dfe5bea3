package recorder

import (
	"image"

	"deedles.dev/surf"
	"golang.org/x/exp/slices"
)

// Window is a surf.Window that keeps track of its place in a tree of
// windows.
type Window struct {
	parent   *Window
	children []*Window
	position image.Point
	size     image.Point
	visible  bool
}

// NewWindow returns a new, hidden Window. It can be used as
// surf.Config.NewWindow.
func NewWindow() surf.Window {
	return new(Window)
}

func (w *Window) indexOf(c *Window) int {
	return slices.Index(w.children, c)
}

func (w *Window) remove(c *Window) {
	if i := w.indexOf(c); i >= 0 {
		w.children = slices.Delete(w.children, i, i+1)
	}
}

func (w *Window) AddChild(child surf.Window) {
	c := child.(*Window)
	if c.parent != nil {
		c.parent.remove(c)
	}
	c.parent = w
	w.children = append(w.children, c)
}

func (w *Window) RemoveChild(child surf.Window) {
	c := child.(*Window)
	if c.parent != w {
		return
	}
	w.remove(c)
	c.parent = nil
}

func (w *Window) StackChildAbove(child, sibling surf.Window) {
	c, sib := child.(*Window), sibling.(*Window)
	if (c.parent != w) || (sib.parent != w) || (c == sib) {
		return
	}

	w.remove(c)
	w.children = slices.Insert(w.children, w.indexOf(sib)+1, c)
}

func (w *Window) StackChildAtBottom(child surf.Window) {
	c := child.(*Window)
	if c.parent != w {
		return
	}

	w.remove(c)
	w.children = slices.Insert(w.children, 0, c)
}

func (w *Window) SetPosition(p image.Point) { w.position = p }
func (w *Window) SetSize(s image.Point)     { w.size = s }
func (w *Window) Show()                     { w.visible = true }
func (w *Window) Hide()                     { w.visible = false }

// Parent returns the window's parent, or nil if it has none.
func (w *Window) Parent() *Window {
	return w.parent
}

// Children returns the window's children, bottom first.
func (w *Window) Children() []*Window {
	return slices.Clone(w.children)
}

func (w *Window) Position() image.Point { return w.position }
func (w *Window) Size() image.Point     { return w.size }
func (w *Window) Visible() bool         { return w.visible }
