// Package camera implements the view transform that maps track-local
// coordinates to screen coordinates: screen = track*scale + (x, y).
//
// The camera holds a current and a target transform. Fit and zoom requests
// only change the target (FitToView snaps both); every tick the current
// transform approaches the target by exponential smoothing.
package camera

import (
	"math"
	"time"

	"apex-sim/internal/common"
	"apex-sim/internal/track"
)

const (
	DefaultSmoothing     = 0.1 // fraction of the remaining distance covered per nominal tick
	DefaultTickRate      = 60  // nominal ticks per second the smoothing factor refers to
	FitHeadroom          = 0.85
	ZoomHeadroom         = 0.75
	DefaultFitPadding    = 80.0
	DefaultZoomPadding   = 100.0
	DefaultZoomDuration  = 1200 * time.Millisecond
	DefaultResetDuration = time.Second
)

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// View is a camera transform.
type View struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// ToScreen maps a track-local point to screen coordinates.
func (v View) ToScreen(p common.Vec2) common.Vec2 {
	return common.Vec2{X: p.X*v.Scale + v.X, Y: p.Y*v.Scale + v.Y}
}

// ToTrack maps a screen point back to track-local coordinates.
func (v View) ToTrack(p common.Vec2) common.Vec2 {
	return common.Vec2{X: (p.X - v.X) / v.Scale, Y: (p.Y - v.Y) / v.Scale}
}

// State is the full camera state, current and target.
type State struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Scale       float64 `json:"scale"`
	TargetX     float64 `json:"targetX"`
	TargetY     float64 `json:"targetY"`
	TargetScale float64 `json:"targetScale"`
}

// View returns the current transform of s.
func (s State) View() View {
	return View{X: s.X, Y: s.Y, Scale: s.Scale}
}

// ToScreen maps a track-local point with the current transform of s.
func (s State) ToScreen(p common.Vec2) common.Vec2 { return s.View().ToScreen(p) }

// Frame computes the view that centers b in the viewport, scaled to fit
// inside the padded viewport and multiplied by headroom. It returns false
// when no positive finite scale exists (empty viewport, degenerate bounds).
func Frame(b *track.BoundingBox, viewport Size, padding, headroom float64) (View, bool) {
	if b == nil || viewport.Width <= 0 || viewport.Height <= 0 {
		return View{}, false
	}
	availW := math.Max(viewport.Width-2*padding, 1)
	availH := math.Max(viewport.Height-2*padding, 1)

	scaleX, scaleY := math.Inf(1), math.Inf(1)
	if b.Width > 0 {
		scaleX = availW / b.Width
	}
	if b.Height > 0 {
		scaleY = availH / b.Height
	}
	scale := math.Min(scaleX, scaleY) * headroom
	if math.IsInf(scale, 0) || math.IsNaN(scale) || scale <= 0 {
		return View{}, false
	}
	c := b.Center()
	return View{
		X:     viewport.Width/2 - c.X*scale,
		Y:     viewport.Height/2 - c.Y*scale,
		Scale: scale,
	}, true
}

// Option configures a Camera.
type Option func(*Camera)

// WithSmoothing sets the per-tick smoothing factor, in (0,1].
func WithSmoothing(f float64) Option {
	return func(c *Camera) {
		if f > 0 && f <= 1 {
			c.smoothing = f
		}
	}
}

// WithTickRate sets the nominal tick rate the smoothing factor refers to.
func WithTickRate(hz float64) Option {
	return func(c *Camera) {
		if hz > 0 {
			c.tickRate = hz
		}
	}
}

// WithEasing sets the curve used by zoom and reset animations.
func WithEasing(e Easing) Option {
	return func(c *Camera) {
		if e != nil {
			c.ease = e
		}
	}
}

// Camera is the smoothed pan/zoom state machine.
type Camera struct {
	current   View
	target    View
	smoothing float64
	tickRate  float64
	ease      Easing
	tween     *tween
}

// New creates a camera with the identity transform.
func New(opts ...Option) *Camera {
	c := &Camera{
		current:   View{Scale: 1},
		target:    View{Scale: 1},
		smoothing: DefaultSmoothing,
		tickRate:  DefaultTickRate,
		ease:      DefaultEasing,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of current and target values.
func (c *Camera) State() State {
	return State{
		X: c.current.X, Y: c.current.Y, Scale: c.current.Scale,
		TargetX: c.target.X, TargetY: c.target.Y, TargetScale: c.target.Scale,
	}
}

// View returns the current transform.
func (c *Camera) View() View { return c.current }

// Target returns the target transform.
func (c *Camera) Target() View { return c.target }

// ToScreen maps a track-local point with the current transform.
func (c *Camera) ToScreen(p common.Vec2) common.Vec2 { return c.current.ToScreen(p) }

// Animating reports whether a zoom tween is still running.
func (c *Camera) Animating() bool { return c.tween != nil }

// FitToView snaps current and target to the framing of b. It is used on
// load and resize. Returns false and leaves the camera untouched when b
// cannot be framed.
func (c *Camera) FitToView(b *track.BoundingBox, viewport Size, padding float64) bool {
	v, ok := Frame(b, viewport, padding, FitHeadroom)
	if !ok {
		return false
	}
	c.tween = nil
	c.current = v
	c.target = v
	return true
}

// ZoomToBounds eases the target towards a tight framing of b over duration.
// The current transform follows through the per-tick smoothing.
func (c *Camera) ZoomToBounds(b *track.BoundingBox, viewport Size, padding float64, duration time.Duration) bool {
	v, ok := Frame(b, viewport, padding, ZoomHeadroom)
	if !ok {
		return false
	}
	c.animateTo(v, duration)
	return true
}

// ResetZoom eases the target back to the full-track framing of b.
func (c *Camera) ResetZoom(b *track.BoundingBox, viewport Size, padding float64, duration time.Duration) bool {
	v, ok := Frame(b, viewport, padding, FitHeadroom)
	if !ok {
		return false
	}
	c.animateTo(v, duration)
	return true
}

func (c *Camera) animateTo(v View, duration time.Duration) {
	c.tween = &tween{
		from:     c.target,
		to:       v,
		duration: duration,
		ease:     c.ease,
	}
}

// Advance runs one nominal tick with the configured smoothing factor.
func (c *Camera) Advance() {
	c.step(time.Duration(float64(time.Second)/c.tickRate), c.smoothing)
}

// AdvanceBy runs the update for an arbitrary elapsed time. The smoothing
// factor is rescaled as 1-(1-f)^(elapsed*tickRate) so the approach speed
// does not depend on how often the host calls it.
func (c *Camera) AdvanceBy(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	ticks := elapsed.Seconds() * c.tickRate
	c.step(elapsed, 1-math.Pow(1-c.smoothing, ticks))
}

func (c *Camera) step(dt time.Duration, factor float64) {
	if c.tween != nil {
		v, done := c.tween.step(dt)
		c.target = v
		if done {
			c.tween = nil
		}
	}
	c.current.X += (c.target.X - c.current.X) * factor
	c.current.Y += (c.target.Y - c.current.Y) * factor
	c.current.Scale += (c.target.Scale - c.current.Scale) * factor
}
