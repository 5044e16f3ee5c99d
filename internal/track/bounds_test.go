package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apex-sim/internal/common"
	"apex-sim/internal/pathdata"
)

func TestBoundsEmpty(t *testing.T) {
	assert.Nil(t, Bounds(nil))
	assert.Nil(t, Bounds(Polyline{}))
}

func TestBounds(t *testing.T) {
	pts := Polyline{{X: -5, Y: 2}, {X: 15, Y: -8}, {X: 3, Y: 12}}
	b := Bounds(pts)
	require.NotNil(t, b)
	assert.Equal(t, BoundingBox{X: -5, Y: -8, Width: 20, Height: 20, CenterX: 5, CenterY: 2}, *b)
	assert.Equal(t, common.Vec2{X: 5, Y: 2}, b.Center())
}

func TestBoundsContainEveryPoint(t *testing.T) {
	pts := Sample(pathdata.Parse("M10,80 C40,10 65,10 95,80 S150,150 180,80 Q200,0 120,20 Z"), 0)
	b := Bounds(pts)
	require.NotNil(t, b)
	const eps = 1e-9
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.X, b.X-eps)
		assert.LessOrEqual(t, p.X, b.X+b.Width+eps)
		assert.GreaterOrEqual(t, p.Y, b.Y-eps)
		assert.LessOrEqual(t, p.Y, b.Y+b.Height+eps)
	}
	assert.InDelta(t, b.X+b.Width/2, b.CenterX, 1e-9)
	assert.InDelta(t, b.Y+b.Height/2, b.CenterY, 1e-9)
}
