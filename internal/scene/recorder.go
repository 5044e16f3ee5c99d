package scene

import (
	"encoding/json"
	"image/color"

	"github.com/samber/lo"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/track"
)

// DrawCommand is one recorded canvas operation.
type DrawCommand struct {
	Op     string        `json:"op"`               // clear, transform, stroke, fill, reset
	View   *camera.View  `json:"view,omitempty"`   // for transform
	Points []common.Vec2 `json:"points,omitempty"` // track-local
	Color  string        `json:"color,omitempty"`
	Width  float64       `json:"width,omitempty"`
	Glow   float64       `json:"glow,omitempty"`
}

const (
	OpClear     = "clear"
	OpTransform = "transform"
	OpStroke    = "stroke"
	OpFill      = "fill"
	OpReset     = "reset"
)

// Recorder is a Canvas that keeps the draw commands of the current frame.
// Clear starts a new frame.
type Recorder struct {
	Commands []DrawCommand
}

func (r *Recorder) Clear() {
	r.Commands = append(r.Commands[:0], DrawCommand{Op: OpClear})
}

func (r *Recorder) SetTransform(v camera.View) {
	r.Commands = append(r.Commands, DrawCommand{Op: OpTransform, View: &v})
}

func (r *Recorder) StrokePolyline(pts track.Polyline, s Stroke) {
	r.Commands = append(r.Commands, DrawCommand{
		Op:     OpStroke,
		Points: pts,
		Color:  HexColor(s.Color),
		Width:  s.Width,
		Glow:   s.Glow,
	})
}

func (r *Recorder) FillPolygon(pts []common.Vec2, c color.RGBA, glow float64) {
	r.Commands = append(r.Commands, DrawCommand{
		Op:     OpFill,
		Points: append([]common.Vec2(nil), pts...),
		Color:  HexColor(c),
		Glow:   glow,
	})
}

func (r *Recorder) ResetTransform() {
	r.Commands = append(r.Commands, DrawCommand{Op: OpReset})
}

// Ops returns the op names in order.
func (r *Recorder) Ops() []string {
	return lo.Map(r.Commands, func(c DrawCommand, _ int) string { return c.Op })
}

// JSON serializes the recorded frame.
func (r *Recorder) JSON() ([]byte, error) {
	return json.Marshal(r.Commands)
}
