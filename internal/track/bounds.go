package track

import (
	"gonum.org/v1/gonum/floats"

	"apex-sim/internal/common"
)

// BoundingBox is the axis-aligned extent of a set of points.
type BoundingBox struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	CenterX float64 `json:"centerX" yaml:"centerX"`
	CenterY float64 `json:"centerY" yaml:"centerY"`
}

// Bounds returns the bounding box of points, or nil when points is empty.
func Bounds(points Polyline) *BoundingBox {
	if len(points) == 0 {
		return nil
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)
	return &BoundingBox{
		X:       minX,
		Y:       minY,
		Width:   maxX - minX,
		Height:  maxY - minY,
		CenterX: (minX + maxX) / 2,
		CenterY: (minY + maxY) / 2,
	}
}

// Center returns the box center.
func (b BoundingBox) Center() common.Vec2 {
	return common.Vec2{X: b.CenterX, Y: b.CenterY}
}
