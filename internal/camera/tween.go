package camera

import "time"

// tween interpolates the camera target from one view to another over a
// fixed duration.
type tween struct {
	from, to View
	elapsed  time.Duration
	duration time.Duration
	ease     Easing
}

// step advances the tween and returns the interpolated view and whether the
// tween has finished.
func (t *tween) step(dt time.Duration) (View, bool) {
	t.elapsed += dt
	if t.duration <= 0 || t.elapsed >= t.duration {
		return t.to, true
	}
	k := t.ease(float64(t.elapsed) / float64(t.duration))
	return View{
		X:     t.from.X + (t.to.X-t.from.X)*k,
		Y:     t.from.Y + (t.to.Y-t.from.Y)*k,
		Scale: t.from.Scale + (t.to.Scale-t.from.Scale)*k,
	}, false
}
