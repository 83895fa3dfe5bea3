package surf_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"deedles.dev/surf"
	"deedles.dev/surf/recorder"
	"github.com/stretchr/testify/require"
)

func newCompositor(t *testing.T) (*surf.Compositor, *recorder.Backend) {
	t.Helper()

	b := recorder.New()
	c := surf.New(surf.Config{
		Backend:   b,
		NewWindow: recorder.NewWindow,
	})
	t.Cleanup(func() { c.Close() })

	return c, b
}

func roundTrip(t *testing.T, c *surf.Compositor) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.RoundTrip(ctx))
}

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	surf.SetLogOutput(&buf)
	t.Cleanup(func() { surf.SetLogOutput(os.Stderr) })
	return &buf
}

func window(s *surf.Surface) *recorder.Window {
	return s.Window().(*recorder.Window)
}
