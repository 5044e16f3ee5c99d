package screen

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

// glowAlpha is the opacity of the halo drawn under glowing strokes.
const glowAlpha = 0.25

// canvas draws scene commands onto an ebiten image. Track-local points are
// mapped to screen space on the CPU so stroke widths stay in pixels.
type canvas struct {
	dst  *ebiten.Image
	view camera.View
}

var _ scene.Canvas = (*canvas)(nil)

func (c *canvas) Clear() {
	c.dst.Fill(ColorBackground)
	c.view = camera.View{Scale: 1}
}

func (c *canvas) SetTransform(v camera.View) { c.view = v }

func (c *canvas) ResetTransform() { c.view = camera.View{Scale: 1} }

func (c *canvas) toScreen(p common.Vec2) (float32, float32) {
	s := c.view.ToScreen(p)
	return float32(s.X), float32(s.Y)
}

func (c *canvas) path(pts []common.Vec2, closed bool) *vector.Path {
	var path vector.Path
	for i, p := range pts {
		sx, sy := c.toScreen(p)
		if i == 0 {
			path.MoveTo(sx, sy)
		} else {
			path.LineTo(sx, sy)
		}
	}
	if closed {
		path.Close()
	}
	return &path
}

func (c *canvas) StrokePolyline(pts track.Polyline, s scene.Stroke) {
	if len(pts) < 2 {
		return
	}
	path := c.path(pts, false)
	if s.Glow > 0 {
		c.stroke(path, s.Width+s.Glow, s.Color, glowAlpha)
	}
	c.stroke(path, s.Width, s.Color, 1)
}

func (c *canvas) stroke(path *vector.Path, width float64, col color.RGBA, alpha float32) {
	var cs ebiten.ColorScale
	cs.ScaleWithColor(col)
	cs.ScaleAlpha(alpha)
	vector.StrokePath(c.dst, path, &vector.StrokeOptions{
		Width:    float32(width),
		LineCap:  vector.LineCapRound,
		LineJoin: vector.LineJoinRound,
	}, &vector.DrawPathOptions{
		AntiAlias:  true,
		ColorScale: cs,
	})
}

func (c *canvas) FillPolygon(pts []common.Vec2, col color.RGBA, glow float64) {
	if len(pts) < 3 {
		return
	}
	path := c.path(pts, true)
	if glow > 0 {
		c.stroke(path, glow, col, glowAlpha)
	}
	var cs ebiten.ColorScale
	cs.ScaleWithColor(col)
	vector.FillPath(c.dst, path, nil, &vector.DrawPathOptions{
		AntiAlias:  true,
		ColorScale: cs,
	})
}
