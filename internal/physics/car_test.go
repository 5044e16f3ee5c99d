package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apex-sim/internal/common"
	"apex-sim/internal/track"
)

func squarePath(t *testing.T) track.Polyline {
	t.Helper()
	g := track.Build("M0,0 L100,0 L100,100 L0,100 Z", track.DefaultOptions())
	require.False(t, g.Empty())
	return g.Points
}

func TestCarWrapsAfterOneLap(t *testing.T) {
	c := NewCar(squarePath(t))
	require.True(t, c.Start())

	for range 1000 {
		c.Advance(DefaultSpeed)
	}
	wrap := math.Min(c.Progress, 1-c.Progress)
	assert.Less(t, wrap, 1e-6)
	assert.GreaterOrEqual(t, c.Progress, 0.0)
	assert.Less(t, c.Progress, 1.0)
}

func TestCarCountsLaps(t *testing.T) {
	c := NewCar(squarePath(t))
	require.True(t, c.Start())
	for range 25 {
		c.Advance(0.1)
	}
	assert.Equal(t, 2, c.Laps)
	assert.InDelta(t, 10, c.LastLapTime, 1)
	assert.InDelta(t, 0.5, c.Progress, 1e-9)
}

func TestCarHeadingOnFirstSegment(t *testing.T) {
	path := squarePath(t)
	c := NewCar(path)
	require.True(t, c.Start())

	assert.Equal(t, path[0], c.Position)
	assert.InDelta(t, 0, c.Heading, 1e-12)

	// Halfway through the samples is the middle of the right edge, heading down (+y).
	c.Advance(0.5)
	assert.InDelta(t, 100, c.Position.X, 1e-9)
	assert.InDelta(t, 50, c.Position.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, c.Heading, 1e-9)
}

func TestCarStartWithoutPath(t *testing.T) {
	c := NewCar(nil)
	assert.False(t, c.Start())
	assert.False(t, c.Active)

	c.Advance(0.5)
	assert.Equal(t, State{}, c.State())
}

func TestCarStopFreezes(t *testing.T) {
	c := NewCar(squarePath(t))
	require.True(t, c.Start())
	for range 100 {
		c.Advance(DefaultSpeed)
	}
	frozen := c.State()
	c.Stop()
	for range 100 {
		c.Advance(DefaultSpeed)
	}
	frozen.Active = false
	assert.Equal(t, frozen, c.State())

	require.True(t, c.Start())
	assert.Equal(t, 0.0, c.Progress)
}

func TestCarMarker(t *testing.T) {
	c := &Car{Position: common.Vec2{X: 10, Y: 10}, Heading: math.Pi / 2}
	m := c.Marker(4)
	assert.InDelta(t, 10, m[0].X, 1e-12)
	assert.InDelta(t, 14, m[0].Y, 1e-12)
	assert.InDelta(t, 8, m[1].Y, 1e-12)
	assert.InDelta(t, 8, m[2].Y, 1e-12)
}

func TestCarAdvanceLargeDeltas(t *testing.T) {
	tests := []struct {
		name     string
		delta    float64
		progress float64
		laps     int
	}{
		{name: "several laps at once", delta: 2.5, progress: 0.5, laps: 2},
		{name: "backwards", delta: -0.25, progress: 0.75, laps: 0},
		{name: "far backwards", delta: -3.25, progress: 0.75, laps: 0},
		{name: "huge", delta: 1e17, progress: 0, laps: math.MaxInt32},
		{name: "nan is ignored", delta: math.NaN(), progress: 0, laps: 0},
		{name: "inf is ignored", delta: math.Inf(1), progress: 0, laps: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCar(squarePath(t))
			require.True(t, c.Start())
			c.Advance(tt.delta)
			assert.InDelta(t, tt.progress, c.Progress, 1e-9)
			assert.Equal(t, tt.laps, c.Laps)
			assert.GreaterOrEqual(t, c.Progress, 0.0)
			assert.Less(t, c.Progress, 1.0)
		})
	}
}

func TestCarStateReportsLastLap(t *testing.T) {
	c := NewCar(squarePath(t))
	require.True(t, c.Start())
	assert.Zero(t, c.State().LastLap)
	for range 4 {
		c.Advance(0.25)
	}
	st := c.State()
	assert.Equal(t, 1, st.Laps)
	assert.Equal(t, 4, st.LastLap)
}
