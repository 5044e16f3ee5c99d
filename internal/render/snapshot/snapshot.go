// Package snapshot renders scene frames to PNG without a window, using
// gonum/plot as the drawing backend.
package snapshot

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

const dpi = 96

var (
	ColorBackground = color.RGBA{10, 10, 16, 255}
	ColorLabel      = color.RGBA{255, 255, 255, 255}
)

// px converts screen pixels to vg lengths at the PNG resolution.
func px(v float64) vg.Length {
	return vg.Length(v) * vg.Inch / dpi
}

// Canvas records a frame into a plot in screen coordinates. Plot y grows
// upwards, so screen y is negated.
type Canvas struct {
	p      *plot.Plot
	view   camera.View
	width  float64
	height float64
	err    error
}

var _ scene.Canvas = (*Canvas)(nil)

// New creates a canvas of the given pixel size.
func New(width, height int) *Canvas {
	c := &Canvas{width: float64(width), height: float64(height)}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	p := plot.New()
	p.BackgroundColor = ColorBackground
	p.HideAxes()
	c.p = p
	c.view = camera.View{Scale: 1}
	c.err = nil
}

func (c *Canvas) SetTransform(v camera.View) { c.view = v }

func (c *Canvas) ResetTransform() { c.view = camera.View{Scale: 1} }

func (c *Canvas) xys(pts []common.Vec2) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		s := c.view.ToScreen(p)
		out[i] = plotter.XY{X: s.X, Y: -s.Y}
	}
	return out
}

func (c *Canvas) StrokePolyline(pts track.Polyline, s scene.Stroke) {
	if c.err != nil || len(pts) < 2 {
		return
	}
	xys := c.xys(pts)
	if s.Glow > 0 {
		glow := s.Color
		glow.A = 64
		c.addLine(xys, glow, s.Width+s.Glow)
	}
	c.addLine(xys, s.Color, s.Width)
}

func (c *Canvas) addLine(xys plotter.XYs, col color.RGBA, width float64) {
	line, err := plotter.NewLine(xys)
	if err != nil {
		c.err = fmt.Errorf("stroke: %w", err)
		return
	}
	line.Color = col
	line.Width = px(width)
	c.p.Add(line)
}

func (c *Canvas) FillPolygon(pts []common.Vec2, col color.RGBA, glow float64) {
	if c.err != nil || len(pts) < 3 {
		return
	}
	poly, err := plotter.NewPolygon(c.xys(pts))
	if err != nil {
		c.err = fmt.Errorf("fill: %w", err)
		return
	}
	poly.Color = col
	poly.LineStyle.Width = 0
	if glow > 0 {
		halo := col
		halo.A = 64
		poly.LineStyle.Color = halo
		poly.LineStyle.Width = px(glow / 2)
	}
	c.p.Add(poly)
}

// AddLabels places text at screen points, e.g. corner numbers.
func (c *Canvas) AddLabels(screen []common.Vec2, labels []string) error {
	if len(screen) != len(labels) {
		return fmt.Errorf("labels: %d points for %d labels", len(screen), len(labels))
	}
	if len(screen) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(screen))
	for i, s := range screen {
		xys[i] = plotter.XY{X: s.X, Y: -s.Y}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Color = ColorLabel
	}
	c.p.Add(l)
	return nil
}

// Err returns the first error hit while recording.
func (c *Canvas) Err() error { return c.err }

// Plot exposes the underlying plot.
func (c *Canvas) Plot() *plot.Plot { return c.p }

func (c *Canvas) frame() {
	c.p.X.Min, c.p.X.Max = 0, c.width
	c.p.Y.Min, c.p.Y.Max = -c.height, 0
}

// WriteTo encodes the frame as PNG.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.frame()
	wt, err := c.p.WriterTo(px(c.width), px(c.height), "png")
	if err != nil {
		return 0, fmt.Errorf("png writer: %w", err)
	}
	return wt.WriteTo(w)
}

// Save writes the frame as PNG to path.
func (c *Canvas) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := c.WriteTo(f); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// Render draws the renderer's current frame onto a new canvas sized to its
// viewport.
func Render(r *scene.Renderer) *Canvas {
	vp := r.Viewport()
	c := New(int(vp.Width), int(vp.Height))
	r.Draw(c)
	return c
}
