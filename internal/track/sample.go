package track

import (
	"math"

	"apex-sim/internal/common"
	"apex-sim/internal/pathdata"
)

// Sampling defaults.
const (
	DefaultLineSpacing  = 2.0  // track units between samples on straight lines
	DefaultCubicSteps   = 30   // parameter steps per cubic Bézier
	DefaultQuadSteps    = 20   // parameter steps per quadratic Bézier
	DefaultArcSteps     = 20   // linear steps per arc (no exact ellipse geometry)
	DefaultCloseEpsilon = 1.0  // distance under which a close adds no point
	DefaultPointBudget  = 2000 // upper bound on polyline size
)

// Polyline is an ordered, dense sequence of track-local points. It is built
// once per path and not mutated afterwards.
type Polyline []common.Vec2

// Sampler flattens commands into a Polyline.
type Sampler struct {
	LineSpacing  float64
	CubicSteps   int
	QuadSteps    int
	ArcSteps     int
	CloseEpsilon float64
}

// DefaultSampler returns a Sampler with the default constants.
func DefaultSampler() Sampler {
	return Sampler{
		LineSpacing:  DefaultLineSpacing,
		CubicSteps:   DefaultCubicSteps,
		QuadSteps:    DefaultQuadSteps,
		ArcSteps:     DefaultArcSteps,
		CloseEpsilon: DefaultCloseEpsilon,
	}
}

// Sample flattens cmds with the default sampler.
func Sample(cmds []pathdata.Command, budget int) Polyline {
	return DefaultSampler().Sample(cmds, budget)
}

// Sample flattens cmds in command order. Each line, curve and arc emits its
// start point followed by the interpolated points up to its endpoint. When
// budget is positive and the result is larger, it is thinned uniformly by
// index, keeping the first and last point.
func (s Sampler) Sample(cmds []pathdata.Command, budget int) Polyline {
	var pts Polyline
	var cur common.Vec2

	for _, c := range cmds {
		if len(c.Points) == 0 {
			continue
		}
		end := c.End()
		switch c.Op {
		case pathdata.OpMoveTo:
			pts = append(pts, end)

		case pathdata.OpLineTo:
			steps := max(1, int(math.Ceil(cur.Dist(end)/s.spacing())))
			pts = appendLerp(pts, cur, end, steps)

		case pathdata.OpCubicTo:
			c1, c2 := c.Points[0], c.Points[1]
			steps := max(1, s.CubicSteps)
			for i := 0; i <= steps; i++ {
				pts = append(pts, cubic(cur, c1, c2, end, float64(i)/float64(steps)))
			}

		case pathdata.OpQuadTo:
			ctrl := c.Points[0]
			steps := max(1, s.QuadSteps)
			for i := 0; i <= steps; i++ {
				pts = append(pts, quad(cur, ctrl, end, float64(i)/float64(steps)))
			}

		case pathdata.OpArcTo:
			pts = appendLerp(pts, cur, end, max(1, s.ArcSteps))

		case pathdata.OpClose:
			if len(pts) > 0 && pts[0].Dist(cur) > s.CloseEpsilon {
				pts = append(pts, pts[0])
			}
		}
		cur = end
	}

	if budget > 0 && len(pts) > budget {
		pts = thin(pts, budget)
	}
	return pts
}

func (s Sampler) spacing() float64 {
	if s.LineSpacing <= 0 {
		return DefaultLineSpacing
	}
	return s.LineSpacing
}

func appendLerp(pts Polyline, from, to common.Vec2, steps int) Polyline {
	for i := 0; i <= steps; i++ {
		if i == steps {
			// exact endpoint, no rounding drift
			pts = append(pts, to)
			break
		}
		pts = append(pts, common.Lerp(from, to, float64(i)/float64(steps)))
	}
	return pts
}

func cubic(p0, p1, p2, p3 common.Vec2, t float64) common.Vec2 {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return common.Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

func quad(p0, p1, p2 common.Vec2, t float64) common.Vec2 {
	mt := 1 - t
	a := mt * mt
	b := 2 * mt * t
	c := t * t
	return common.Vec2{
		X: a*p0.X + b*p1.X + c*p2.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y,
	}
}

// thin keeps n points spread evenly by index.
func thin(pts Polyline, n int) Polyline {
	if n == 1 {
		return Polyline{pts[0]}
	}
	out := make(Polyline, n)
	last := len(pts) - 1
	for i := range out {
		idx := int(math.Round(float64(i) * float64(last) / float64(n-1)))
		out[i] = pts[idx]
	}
	return out
}
