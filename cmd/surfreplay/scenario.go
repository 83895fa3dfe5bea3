package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"time"

	"deedles.dev/surf"
	"deedles.dev/surf/recorder"
	"deedles.dev/surf/region"
	"deedles.dev/surf/resource"
	"deedles.dev/surf/shm"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of client operations to replay.
type Scenario struct {
	// Surfaces are created in order before any step runs.
	Surfaces []string `yaml:"surfaces"`

	// AutoRelease makes the backend release resources as soon as no
	// frame uses them.
	AutoRelease bool `yaml:"auto_release"`

	// FailLargerThan makes resource production fail for buffers with
	// more pixels than this.
	FailLargerThan int `yaml:"fail_larger_than"`

	Steps []Step `yaml:"steps"`
}

// Step is one operation. Which fields are used depends on Op.
type Step struct {
	Surface string `yaml:"surface"`
	Op      string `yaml:"op"`

	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Color  string `yaml:"color"`

	Rect  []int   `yaml:"rect"`
	Rects [][]int `yaml:"rects"`
	Value float32 `yaml:"value"`
	Mode  string  `yaml:"mode"`

	Child string `yaml:"child"`
	Ref   string `yaml:"ref"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`

	Time     int64  `yaml:"time"`
	Resource uint64 `yaml:"resource"`
	Lost     bool   `yaml:"lost"`
}

func parseScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	err := d.Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

func toRect(v []int) (image.Rectangle, error) {
	if len(v) != 4 {
		return image.Rectangle{}, fmt.Errorf("rectangle needs 4 values, not %v", len(v))
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

func toRegion(v [][]int) (region.Region, error) {
	var r region.Region
	for _, rect := range v {
		rect, err := toRect(rect)
		if err != nil {
			return r, err
		}
		r = r.UnionRect(rect)
	}
	return r, nil
}

// logBackend prints every frame submitted to it.
type logBackend struct {
	*recorder.Backend
	out io.Writer
}

func (b logBackend) SubmitFrame(id surf.TargetID, frame surf.Frame) {
	quads := make([]string, 0, len(frame.Quads))
	for _, q := range frame.Quads {
		if q.Resource == 0 {
			cr, cg, cb, ca := q.Color.RGBA()
			quads = append(quads, fmt.Sprintf("color(%02x%02x%02x%02x)", cr>>8, cg>>8, cb>>8, ca>>8))
			continue
		}
		quads = append(quads, fmt.Sprintf("resource(%v %v->%v)", q.Resource, q.Source, q.Dest))
	}

	fmt.Fprintf(b.out, "  frame target=%v size=%v damage=%v quads=[%v]\n", id, frame.Size, frame.Damage, strings.Join(quads, " "))
	b.Backend.SubmitFrame(id, frame)
}

func (b logBackend) DestroyTarget(id surf.TargetID) {
	fmt.Fprintf(b.out, "  destroy target=%v\n", id)
	b.Backend.DestroyTarget(id)
}

type replayer struct {
	out      io.Writer
	scenario *Scenario
	backend  *recorder.Backend
	comp     *surf.Compositor
	surfaces map[string]*surf.Surface
	subs     map[string]*surf.SubSurface
	buffers  []*shm.Buffer
}

// replay runs scenario, writing a log of what happens to out.
func replay(ctx context.Context, out io.Writer, scenario *Scenario) error {
	backend := recorder.New()
	backend.AutoRelease = scenario.AutoRelease
	if limit := scenario.FailLargerThan; limit > 0 {
		backend.Fail = func(buf resource.Buffer) bool {
			size := buf.Size()
			return size.X*size.Y > limit
		}
	}

	config, err := surf.ConfigFromEnv(logBackend{Backend: backend, out: out}, recorder.NewWindow)
	if err != nil {
		return err
	}

	r := replayer{
		out:      out,
		scenario: scenario,
		backend:  backend,
		comp:     surf.New(config),
		surfaces: make(map[string]*surf.Surface),
		subs:     make(map[string]*surf.SubSurface),
	}
	defer r.close()

	for _, name := range scenario.Surfaces {
		if _, ok := r.surfaces[name]; ok {
			return fmt.Errorf("duplicate surface %q", name)
		}
		r.surfaces[name] = r.comp.CreateSurface()
	}

	for i, step := range scenario.Steps {
		fmt.Fprintf(out, "%v: %v %v\n", i, step.Op, step.Surface)
		err := r.step(step)
		if err != nil {
			return fmt.Errorf("step %v (%v): %w", i, step.Op, err)
		}

		err = r.comp.RoundTrip(ctx)
		if err != nil {
			return fmt.Errorf("step %v (%v): %w", i, step.Op, err)
		}
	}

	return nil
}

func (r *replayer) close() {
	r.comp.Close()
	for _, buf := range r.buffers {
		buf.Destroy()
	}
}

func (r *replayer) surface(name string) (*surf.Surface, error) {
	s, ok := r.surfaces[name]
	if !ok {
		return nil, fmt.Errorf("unknown surface %q", name)
	}
	return s, nil
}

// report prints a rejected operation. Rejections are part of what a
// scenario can exercise, so they do not stop the replay.
func (r *replayer) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "  rejected: %v\n", err)
	}
}

func (r *replayer) newBuffer(name string, step Step) (*shm.Buffer, error) {
	buf, err := shm.NewBuffer(step.Width, step.Height)
	if err != nil {
		return nil, err
	}
	r.buffers = append(r.buffers, buf)

	if step.Color != "" {
		c, ok := colornames.Map[step.Color]
		if !ok {
			return nil, fmt.Errorf("unknown color %q", step.Color)
		}
		buf.Fill(c)
	} else {
		buf.Fill(color.Transparent)
	}

	size := buf.Size()
	buf.Release = func() {
		fmt.Fprintf(r.out, "  release %v buffer %v (lost: %v)\n", name, size, buf.Lost())
	}
	return buf, nil
}

func (r *replayer) step(step Step) error {
	if step.Op == "draw" && step.Surface == "" {
		return r.backend.DrawAll(time.UnixMilli(step.Time))
	}
	if step.Op == "release" {
		return r.backend.Release(resource.ID(step.Resource), 0, step.Lost)
	}

	s, err := r.surface(step.Surface)
	if err != nil {
		return err
	}

	switch step.Op {
	case "attach":
		if step.Width == 0 && step.Height == 0 {
			s.Attach(nil)
			return nil
		}
		buf, err := r.newBuffer(step.Surface, step)
		if err != nil {
			return err
		}
		s.Attach(buf)

	case "damage":
		rect, err := toRect(step.Rect)
		if err != nil {
			return err
		}
		s.Damage(rect)

	case "commit":
		s.Commit()

	case "opaque":
		reg, err := toRegion(step.Rects)
		if err != nil {
			return err
		}
		s.SetOpaqueRegion(reg)

	case "input":
		if step.Rects == nil {
			s.SetInputRegion(region.Everything())
			return nil
		}
		reg, err := toRegion(step.Rects)
		if err != nil {
			return err
		}
		s.SetInputRegion(reg)

	case "scale":
		r.report(s.SetBufferScale(step.Value))

	case "viewport":
		r.report(s.SetViewport(image.Pt(step.Width, step.Height)))

	case "crop":
		if step.Rect == nil {
			r.report(s.SetCrop(surf.RectF{}))
			return nil
		}
		rect, err := toRect(step.Rect)
		if err != nil {
			return err
		}
		r.report(s.SetCrop(surf.RectF{
			X: float32(rect.Min.X),
			Y: float32(rect.Min.Y),
			W: float32(rect.Dx()),
			H: float32(rect.Dy()),
		}))

	case "blend":
		switch step.Mode {
		case "normal", "":
			s.SetBlendMode(surf.BlendNormal)
		case "replace":
			s.SetBlendMode(surf.BlendReplace)
		default:
			return fmt.Errorf("unknown blend mode %q", step.Mode)
		}

	case "alpha":
		r.report(s.SetAlpha(step.Value))

	case "secure":
		s.SetOnlyVisibleOnSecureOutput(true)

	case "add_subsurface":
		child, err := r.surface(step.Child)
		if err != nil {
			return err
		}
		sub, err := s.AddSubSurface(child)
		r.report(err)
		if err == nil {
			r.subs[step.Child] = sub
		}

	case "remove_subsurface":
		child, err := r.surface(step.Child)
		if err != nil {
			return err
		}
		r.report(s.RemoveSubSurface(child))

	case "position":
		child, err := r.surface(step.Child)
		if err != nil {
			return err
		}
		r.report(s.SetSubSurfacePosition(child, image.Pt(step.X, step.Y)))

	case "place_above", "place_below":
		child, err := r.surface(step.Child)
		if err != nil {
			return err
		}
		ref, err := r.surface(step.Ref)
		if err != nil {
			return err
		}
		if step.Op == "place_above" {
			r.report(s.PlaceAbove(child, ref))
		} else {
			r.report(s.PlaceBelow(child, ref))
		}

	case "sync", "desync":
		sub, ok := r.subs[step.Surface]
		if !ok {
			return fmt.Errorf("%q is not a sub-surface", step.Surface)
		}
		if step.Op == "sync" {
			sub.SetSync()
		} else {
			sub.SetDesync()
		}

	case "frame":
		name := step.Surface
		s.RequestFrameCallback(func(t time.Time) {
			if t.IsZero() {
				fmt.Fprintf(r.out, "  frame callback %v cancelled\n", name)
				return
			}
			fmt.Fprintf(r.out, "  frame callback %v at %v\n", name, t.UnixMilli())
		})

	case "draw":
		return r.backend.Draw(s.Target(), time.UnixMilli(step.Time))

	case "destroy":
		s.Destroy()
		delete(r.surfaces, step.Surface)
		delete(r.subs, step.Surface)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	return nil
}
