package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basic = `
surfaces: [parent, child]
auto_release: true
steps:
  - {surface: parent, op: attach, width: 64, height: 64, color: red}
  - {surface: parent, op: frame}
  - {surface: parent, op: commit}
  - {surface: parent, op: add_subsurface, child: child}
  - {surface: child, op: attach, width: 8, height: 8}
  - {surface: child, op: commit}
  - {surface: parent, op: place_above, child: child, ref: child}
  - {surface: parent, op: commit}
  - {op: draw, time: 1000}
  - {surface: parent, op: attach, width: 64, height: 64}
  - {surface: parent, op: damage, rect: [0, 0, 4, 4]}
  - {surface: parent, op: commit}
  - {surface: parent, op: frame}
  - {surface: parent, op: destroy}
`

func TestReplay(t *testing.T) {
	scenario, err := parseScenario(strings.NewReader(basic))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, replay(ctx, &out, scenario))

	log := out.String()
	assert.Contains(t, log, "resource(1 {0 0 64 64}->(0,0)-(64,64))")
	assert.Contains(t, log, "rejected: place above")
	assert.Contains(t, log, "frame callback parent at 1000")
	assert.Contains(t, log, "frame callback parent cancelled")
	assert.Contains(t, log, "damage={(0,0)-(4,4)}")
	assert.Contains(t, log, "release parent buffer (64,64) (lost: false)")
	assert.Contains(t, log, "destroy target=")
}

func TestReplayPlaceholder(t *testing.T) {
	scenario, err := parseScenario(strings.NewReader(`
surfaces: [s]
fail_larger_than: 16
steps:
  - {surface: s, op: attach, width: 8, height: 8}
  - {surface: s, op: commit}
`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), &out, scenario))
	assert.Contains(t, out.String(), "color(000000ff)")
}

func TestReplayErrors(t *testing.T) {
	_, err := parseScenario(strings.NewReader("steps: [{op: commit, bogus: 1}]"))
	assert.Error(t, err)

	scenario, err := parseScenario(strings.NewReader("steps: [{surface: nope, op: commit}]"))
	require.NoError(t, err)
	err = replay(context.Background(), new(bytes.Buffer), scenario)
	assert.ErrorContains(t, err, "unknown surface")

	scenario, err = parseScenario(strings.NewReader("surfaces: [s]\nsteps: [{surface: s, op: spin}]"))
	require.NoError(t, err)
	err = replay(context.Background(), new(bytes.Buffer), scenario)
	assert.ErrorContains(t, err, "unknown op")
}
