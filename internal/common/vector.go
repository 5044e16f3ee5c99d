package common

import "math"

// Vec2 represents a 2D vector or a point in track-local units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add adds two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts other from v.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale multiplies the vector by a scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the length (magnitude) of the vector.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the euclidean distance between v and other.
func (v Vec2) Dist(other Vec2) float64 {
	return other.Sub(v).Len()
}

// Rotate rotates the vector by angle radians around the origin.
func (v Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Heading returns the direction from v towards other in radians.
func (v Vec2) Heading(other Vec2) float64 {
	return math.Atan2(other.Y-v.Y, other.X-v.X)
}

// Reflect mirrors other through v: v + (v - other).
// Used for smooth curve control points.
func (v Vec2) Reflect(other Vec2) Vec2 {
	return v.Add(v.Sub(other))
}

// Lerp interpolates linearly between a and b, t in [0,1].
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
