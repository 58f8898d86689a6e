package liveness_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/viashift/line/linetest"
	"github.com/Alia5/viashift/liveness"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestMeasure(t *testing.T) {
	tests := []struct {
		name       string
		window     time.Duration
		edges      []time.Duration
		wantActive bool
		wantEdges  uint64
	}{
		{name: "dead clock", window: ms(1500), wantActive: false},
		{name: "four edges", window: ms(1500), edges: []time.Duration{ms(10), ms(20), ms(30), ms(40)}, wantActive: true, wantEdges: 4},
		{name: "three edges is not enough", window: ms(1500), edges: []time.Duration{ms(10), ms(20), ms(30)}, wantEdges: 3},
		{name: "short window", window: ms(900), edges: []time.Duration{ms(10), ms(20), ms(30), ms(40)}, wantEdges: 4},
		{name: "window of exactly one second", window: time.Second, edges: []time.Duration{ms(10), ms(20), ms(30), ms(40)}, wantEdges: 4},
		{name: "edges after the window are not counted", window: ms(1500), edges: []time.Duration{ms(10), ms(20), ms(30), ms(2000)}, wantEdges: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := linetest.NewFakeClock()
			m, err := liveness.New(linetest.EdgesAt(clock, tt.edges...), clock)
			require.NoError(t, err)

			r := m.Measure(tt.window)
			assert.Equal(t, tt.wantActive, r.Active)
			assert.Equal(t, tt.wantEdges, r.Edges)
			assert.GreaterOrEqual(t, r.Elapsed, tt.window)
		})
	}
}

func TestProbe_StoppedHostClock(t *testing.T) {
	clock := linetest.NewFakeClock()
	m, err := liveness.New(linetest.StoppedClock(), clock)
	require.NoError(t, err)
	assert.False(t, m.Probe(ms(1100)))
}

func TestNew_NoSense(t *testing.T) {
	_, err := liveness.New(nil, nil)
	assert.ErrorIs(t, err, liveness.ErrNoSense)
}
