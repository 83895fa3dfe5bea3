package surf

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"sync"

	"deedles.dev/surf/internal/debug"
	"deedles.dev/surf/internal/ev"
	"deedles.dev/surf/internal/objstore"
	"deedles.dev/surf/resource"
	"golang.org/x/exp/slices"
	"golang.org/x/image/colornames"
)

// Handle identifies a surface within its Compositor. Handles are never
// reused.
type Handle uint32

// Config configures a Compositor.
type Config struct {
	// Backend is used to produce resources and to submit frames. It is
	// required.
	Backend Backend

	// NewWindow creates the host window for a new surface. If it is
	// nil, surfaces get windows that do nothing.
	NewWindow func() Window

	// Usage is passed to the backend for every resource produced.
	Usage resource.UsageHint

	// Placeholder is the color drawn in place of a buffer that the
	// backend could not produce a resource for. If it is nil, black is
	// used.
	Placeholder color.Color
}

// ConfigFromEnv returns a Config for backend with the defaults
// overridden by the SURF_USAGE and SURF_PLACEHOLDER environment
// variables. SURF_PLACEHOLDER is an SVG color name, such as "magenta".
func ConfigFromEnv(backend Backend, newWindow func() Window) (Config, error) {
	config := Config{
		Backend:     backend,
		NewWindow:   newWindow,
		Placeholder: colornames.Black,
	}

	if v, ok := os.LookupEnv("SURF_USAGE"); ok {
		usage, err := resource.ParseUsageHint(v)
		if err != nil {
			return config, fmt.Errorf("SURF_USAGE: %w", err)
		}
		config.Usage = usage
	}

	if v, ok := os.LookupEnv("SURF_PLACEHOLDER"); ok {
		c, ok := colornames.Map[v]
		if !ok {
			return config, fmt.Errorf("SURF_PLACEHOLDER: unknown color %q", v)
		}
		config.Placeholder = c
	}

	return config, nil
}

// Compositor owns a set of surfaces and the queue through which
// notifications from the backend reach them. Everything except for
// the methods that explicitly say otherwise must be called from a
// single goroutine, the one that owns the compositor.
type Compositor struct {
	close    sync.Once
	config   Config
	surfaces *objstore.Store[*Surface]
	queue    *ev.Queue
}

func New(config Config) *Compositor {
	if config.NewWindow == nil {
		config.NewWindow = func() Window { return nopWindow{} }
	}
	if config.Placeholder == nil {
		config.Placeholder = colornames.Black
	}

	return &Compositor{
		config:   config,
		surfaces: objstore.New[*Surface](1),
		queue:    ev.NewQueue(),
	}
}

// Close destroys every remaining surface and stops the compositor.
// Notifications that were queued before Close are run before it
// returns. Release notifications that arrive afterwards are run
// directly by the goroutine that delivers them, and everything else
// that arrives afterwards is dropped.
func (c *Compositor) Close() error {
	var handles []uint32
	c.surfaces.Range(func(id uint32, _ *Surface) {
		handles = append(handles, id)
	})
	slices.Sort(handles)
	for _, h := range handles {
		if s, ok := c.surfaces.Get(h); ok {
			s.Destroy()
		}
	}

	var err error
	c.close.Do(func() {
		c.queue.Close()
		err = c.queue.Drain()
		c.queue.Stop()
	})
	return err
}

// post adds a task to the queue. It may be called from any goroutine.
func (c *Compositor) post(task func()) bool {
	ok := c.queue.Post(func() error {
		task()
		return nil
	})
	if !ok {
		debug.Printf("notification not queued: compositor closed")
	}
	return ok
}

// Flush runs any notifications that have been queued since the last
// flush without blocking.
func (c *Compositor) Flush() error {
	return c.queue.Flush()
}

// Dispatch blocks until notifications are available and then runs
// them.
func (c *Compositor) Dispatch(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.queue.Done():
		return ErrClosed
	case task, ok := <-c.queue.Tasks():
		if !ok {
			return ErrClosed
		}
		return errors.Join(task(), c.queue.Flush())
	}
}

// RoundTrip runs notifications until every notification that was
// queued before it was called has been run.
func (c *Compositor) RoundTrip(ctx context.Context) error {
	done := make(chan struct{})
	if !c.post(func() { close(done) }) {
		return ErrClosed
	}

	var errs []error
	for {
		select {
		case <-done:
			return errors.Join(errs...)
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		case task, ok := <-c.queue.Tasks():
			if !ok {
				return errors.Join(append(errs, ErrClosed)...)
			}
			if err := task(); err != nil {
				errs = append(errs, err)
			}
		}
	}
}

// CreateSurface creates a new surface with the default state.
func (c *Compositor) CreateSurface() *Surface {
	s := newSurface(c)
	s.handle = Handle(c.surfaces.Add(s))
	debug.Printf("%v created", s)
	return s
}

// Surface returns the live surface with the given handle.
func (c *Compositor) Surface(h Handle) (*Surface, bool) {
	return c.surfaces.Get(uint32(h))
}

// Len returns the number of live surfaces.
func (c *Compositor) Len() int {
	return c.surfaces.Len()
}

// SetLogOutput redirects the diagnostics of every package in the
// module to w.
func SetLogOutput(w io.Writer) {
	debug.SetOutput(w)
}
