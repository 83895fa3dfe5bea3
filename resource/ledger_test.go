package resource_test

import (
	"bytes"
	"errors"
	"image"
	"os"
	"testing"

	"deedles.dev/surf/internal/debug"
	"deedles.dev/surf/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type release struct {
	fence resource.Fence
	lost  bool
}

type buffer struct {
	size     image.Point
	uses     int
	releases []release
}

func (b *buffer) Size() image.Point { return b.size }
func (b *buffer) OnUse()            { b.uses++ }

func (b *buffer) OnRelease(fence resource.Fence, lost bool) {
	b.releases = append(b.releases, release{fence, lost})
}

type producer struct {
	next   resource.ID
	fail   bool
	hints  []resource.UsageHint
	secure []bool
}

func (p *producer) CreateResource(buf resource.Buffer, secureOnly bool, hint resource.UsageHint, notify resource.Notifier) (resource.Resource, error) {
	if p.fail {
		return resource.Resource{}, errors.New("out of memory")
	}

	p.next++
	p.hints = append(p.hints, hint)
	p.secure = append(p.secure, secureOnly)
	return resource.Resource{ID: p.next, Size: buf.Size()}, nil
}

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	t.Cleanup(func() { debug.SetOutput(os.Stderr) })
	return &buf
}

func TestProduce(t *testing.T) {
	var p producer
	l := resource.NewLedger(&p, nil)

	buf := buffer{size: image.Pt(64, 64)}
	res, ok := l.Produce(&buf, true, resource.UsageScanout)
	require.True(t, ok)
	assert.Equal(t, resource.Resource{ID: 1, Size: image.Pt(64, 64)}, res)
	assert.Equal(t, 1, buf.uses)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, []resource.UsageHint{resource.UsageScanout}, p.hints)
	assert.Equal(t, []bool{true}, p.secure)
}

func TestProduceFailure(t *testing.T) {
	captureLog(t)

	p := producer{fail: true}
	l := resource.NewLedger(&p, nil)

	buf := buffer{size: image.Pt(8, 8)}
	res, ok := l.Produce(&buf, false, resource.UsageDefault)
	assert.False(t, ok)
	assert.False(t, res.Valid())
	assert.Zero(t, buf.uses)
	assert.Zero(t, l.Len())

	res, ok = l.Produce(nil, false, resource.UsageDefault)
	assert.False(t, ok)
	assert.False(t, res.Valid())
}

func TestReleaseExactlyOnce(t *testing.T) {
	log := captureLog(t)

	var p producer
	l := resource.NewLedger(&p, nil)

	buf := buffer{size: image.Pt(4, 4)}
	res, ok := l.Produce(&buf, false, resource.UsageDefault)
	require.True(t, ok)

	l.Released(res.ID, 7, false)
	assert.Equal(t, []release{{fence: 7, lost: false}}, buf.releases)
	assert.Zero(t, l.Len())

	l.Released(res.ID, 8, false)
	assert.Len(t, buf.releases, 1)
	assert.Contains(t, log.String(), "release of unknown resource")

	l.Drain()
	assert.Len(t, buf.releases, 1)
}

func TestReleasePosted(t *testing.T) {
	var p producer
	var posted []func()
	l := resource.NewLedger(&p, func(f func()) bool {
		posted = append(posted, f)
		return true
	})

	buf := buffer{size: image.Pt(4, 4)}
	res, ok := l.Produce(&buf, false, resource.UsageDefault)
	require.True(t, ok)

	l.Released(res.ID, 0, true)
	assert.Empty(t, buf.releases)
	require.Len(t, posted, 1)

	posted[0]()
	assert.Equal(t, []release{{lost: true}}, buf.releases)
}

func TestReleaseNotPosted(t *testing.T) {
	var p producer
	l := resource.NewLedger(&p, func(func()) bool { return false })

	buf := buffer{size: image.Pt(4, 4)}
	res, ok := l.Produce(&buf, false, resource.UsageDefault)
	require.True(t, ok)

	l.Released(res.ID, 7, false)
	assert.Equal(t, []release{{fence: 7}}, buf.releases)
	assert.Zero(t, l.Len())
}

// eagerProducer releases every resource from another goroutine as
// soon as it has been created.
type eagerProducer struct {
	producer
	done chan struct{}
}

func (p *eagerProducer) CreateResource(buf resource.Buffer, secureOnly bool, hint resource.UsageHint, notify resource.Notifier) (resource.Resource, error) {
	res, err := p.producer.CreateResource(buf, secureOnly, hint, notify)
	if err != nil {
		return res, err
	}

	go func() {
		defer close(p.done)
		notify.Released(res.ID, 5, false)
	}()
	return res, nil
}

func TestReleaseDuringProduce(t *testing.T) {
	log := captureLog(t)

	p := eagerProducer{done: make(chan struct{})}
	l := resource.NewLedger(&p, nil)

	buf := buffer{size: image.Pt(4, 4)}
	_, ok := l.Produce(&buf, false, resource.UsageDefault)
	require.True(t, ok)
	<-p.done

	assert.Equal(t, []release{{fence: 5}}, buf.releases)
	assert.Equal(t, 1, buf.uses)
	assert.Zero(t, l.Len())
	assert.NotContains(t, log.String(), "unknown resource")
}

func TestDrain(t *testing.T) {
	log := captureLog(t)

	var p producer
	l := resource.NewLedger(&p, nil)

	a := buffer{size: image.Pt(1, 1)}
	b := buffer{size: image.Pt(2, 2)}
	ra, ok := l.Produce(&a, false, resource.UsageDefault)
	require.True(t, ok)
	_, ok = l.Produce(&b, false, resource.UsageDefault)
	require.True(t, ok)

	l.Released(ra.ID, 3, false)
	l.Drain()
	assert.True(t, l.Closed())
	assert.Zero(t, l.Len())
	assert.Equal(t, []release{{fence: 3}}, a.releases)
	assert.Equal(t, []release{{lost: true}}, b.releases)

	// A late notification from the backend is ignored quietly.
	log.Reset()
	l.Released(2, 0, false)
	assert.Len(t, b.releases, 1)
	assert.NotContains(t, log.String(), "unknown resource")

	_, ok = l.Produce(&a, false, resource.UsageDefault)
	assert.False(t, ok)
}

func TestUnrefDrains(t *testing.T) {
	var p producer
	l := resource.NewLedger(&p, nil)

	buf := buffer{size: image.Pt(1, 1)}
	res, ok := l.Produce(&buf, false, resource.UsageDefault)
	require.True(t, ok)

	// The outstanding resource keeps the ledger alive after its owner
	// lets go.
	l.Unref()
	assert.False(t, l.Closed())

	l.Released(res.ID, 0, false)
	assert.True(t, l.Closed())
	assert.Equal(t, []release{{}}, buf.releases)
}

func TestParseUsageHint(t *testing.T) {
	for _, h := range []resource.UsageHint{resource.UsageDefault, resource.UsageTexture, resource.UsageScanout} {
		parsed, err := resource.ParseUsageHint(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, parsed)
	}

	_, err := resource.ParseUsageHint("sideways")
	assert.Error(t, err)
}
