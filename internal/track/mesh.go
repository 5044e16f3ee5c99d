package track

import (
	"math"

	"apex-sim/internal/common"
)

// Closest finds the polyline point closest to the given position.
// Returns the point and its index, or -1 for an empty polyline.
// Linear search is fine for a few thousand points.
func (p Polyline) Closest(pos common.Vec2) (common.Vec2, int) {
	minDistSq := math.MaxFloat64
	closestIdx := -1

	for i, pt := range p {
		dx := pos.X - pt.X
		dy := pos.Y - pt.Y
		distSq := dx*dx + dy*dy
		if distSq < minDistSq {
			minDistSq = distSq
			closestIdx = i
		}
	}

	if closestIdx == -1 {
		return common.Vec2{}, -1
	}
	return p[closestIdx], closestIdx
}

// IndexAt maps a lap fraction in [0,1) to a polyline index via
// floor(progress*(N-1)), clamped to the valid range.
func (p Polyline) IndexAt(progress float64) (int, bool) {
	if len(p) == 0 {
		return 0, false
	}
	idx := int(math.Floor(progress * float64(len(p)-1)))
	return min(max(idx, 0), len(p)-1), true
}

// At returns the point for a lap fraction.
func (p Polyline) At(progress float64) (common.Vec2, bool) {
	idx, ok := p.IndexAt(progress)
	if !ok {
		return common.Vec2{}, false
	}
	return p[idx], true
}

// HeadingAt returns the direction from point idx towards the next sample that
// differs from it. Duplicate samples (a move followed by a line starting at
// the same spot) are skipped. ok is false when no such sample exists.
func (p Polyline) HeadingAt(idx int) (float64, bool) {
	if idx < 0 || idx >= len(p) {
		return 0, false
	}
	cur := p[idx]
	for j := idx + 1; j < len(p); j++ {
		if p[j] != cur {
			return cur.Heading(p[j]), true
		}
	}
	return 0, false
}

// Length returns the summed segment length of the polyline.
func (p Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i-1].Dist(p[i])
	}
	return total
}
