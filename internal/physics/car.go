package physics

import (
	"math"

	"apex-sim/internal/common"
	"apex-sim/internal/track"
)

const (
	DefaultSpeed = 0.001 // Lap fraction per tick
	MarkerSize   = 15.0  // Screen pixels, divided by camera scale when drawn
)

// State is the externally visible car state.
type State struct {
	Progress float64 `json:"progress"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Active   bool    `json:"active"`
	Laps     int     `json:"laps"`
	LastLap  int     `json:"lastLap"` // ticks taken by the previous lap, 0 before the first
}

// Car moves a marker around a closed polyline. Position is a pure function
// of Progress: floor(Progress*(N-1)) picks the sample.
type Car struct {
	Progress float64
	Position common.Vec2
	Heading  float64 // Radians
	Active   bool

	// Race State
	Laps           int
	CurrentLapTime int // Ticks for current lap
	LastLapTime    int // Ticks for previous lap

	path track.Polyline
}

// NewCar creates an idle car bound to path. The path may be empty while
// geometry is still loading; Start is then a no-op.
func NewCar(path track.Polyline) *Car {
	c := &Car{path: path}
	c.resolve()
	return c
}

// Start resets progress to the start line and activates the car. It
// returns false when there is no path to drive on.
func (c *Car) Start() bool {
	if len(c.path) == 0 {
		return false
	}
	c.Progress = 0
	c.Laps = 0
	c.CurrentLapTime = 0
	c.LastLapTime = 0
	c.Active = true
	c.resolve()
	return true
}

// Stop freezes the car where it is.
func (c *Car) Stop() {
	c.Active = false
}

// Advance moves an active car by delta lap fractions and wraps past the
// finish line. Non-finite deltas are ignored.
func (c *Car) Advance(delta float64) {
	if !c.Active || len(c.path) == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return
	}
	next := c.Progress + delta
	c.CurrentLapTime++
	if laps := math.Floor(next); laps >= 1 {
		c.Laps += int(math.Min(laps, math.MaxInt32))
		c.LastLapTime = c.CurrentLapTime
		c.CurrentLapTime = 0
	}
	c.Progress = math.Mod(next, 1)
	if c.Progress < 0 {
		c.Progress++
	}
	if c.Progress >= 1 {
		c.Progress = 0
	}
	c.resolve()
}

func (c *Car) resolve() {
	idx, ok := c.path.IndexAt(c.Progress)
	if !ok {
		return
	}
	c.Position = c.path[idx]
	// At the last sample there is no next point; the previous heading stays.
	if h, ok := c.path.HeadingAt(idx); ok {
		c.Heading = h
	}
}

// State returns a snapshot of the car.
func (c *Car) State() State {
	return State{
		Progress: c.Progress,
		X:        c.Position.X,
		Y:        c.Position.Y,
		Rotation: c.Heading,
		Active:   c.Active,
		Laps:     c.Laps,
		LastLap:  c.LastLapTime,
	}
}

// Marker returns the vertices of an isosceles triangle of the given size
// pointing along the heading, in track-local units.
func (c *Car) Marker(size float64) [3]common.Vec2 {
	local := [3]common.Vec2{
		{X: size, Y: 0},
		{X: -size / 2, Y: size / 2},
		{X: -size / 2, Y: -size / 2},
	}
	var out [3]common.Vec2
	for i, p := range local {
		out[i] = c.Position.Add(p.Rotate(c.Heading))
	}
	return out
}
