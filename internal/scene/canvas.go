package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/track"
)

// Stroke describes how a polyline is drawn. Width and Glow are screen pixels
// and do not scale with the camera.
type Stroke struct {
	Color color.RGBA
	Width float64
	Glow  float64
}

// Canvas is a drawing surface. Points passed between SetTransform and
// ResetTransform are in track-local units.
type Canvas interface {
	Clear()
	SetTransform(v camera.View)
	StrokePolyline(pts track.Polyline, s Stroke)
	FillPolygon(pts []common.Vec2, c color.RGBA, glow float64)
	ResetTransform()
}

var (
	CarColor     = color.RGBA{0x00, 0xE5, 0xFF, 0xFF}
	DefaultColor = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

// ParseHexColor parses "#RGB", "#RRGGBB" and "#RRGGBBAA".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// HexColor formats c as "#RRGGBB", with an alpha suffix when not opaque.
func HexColor(c color.RGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func sectorColor(s *track.Sector) color.RGBA {
	c, err := ParseHexColor(s.Color)
	if err != nil {
		return DefaultColor
	}
	return c
}
