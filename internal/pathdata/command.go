// Package pathdata interprets vector path descriptions (the SVG "d" mini-language)
// into absolute drawing commands.
package pathdata

import (
	"fmt"
	"strconv"
	"strings"

	"apex-sim/internal/common"
)

// Op is the type of a normalized drawing command.
type Op int

const (
	OpMoveTo  Op = iota // start a new sub-path at the endpoint
	OpLineTo            // straight line to the endpoint
	OpCubicTo           // cubic Bézier via two control points
	OpQuadTo            // quadratic Bézier via one control point
	OpArcTo             // elliptical arc, approximated when sampled
	OpClose             // close the sub-path back to its start
)

// String returns a human-readable representation of the operation.
func (o Op) String() string {
	switch o {
	case OpMoveTo:
		return "move_to"
	case OpLineTo:
		return "line_to"
	case OpCubicTo:
		return "cubic_to"
	case OpQuadTo:
		return "quad_to"
	case OpArcTo:
		return "arc_to"
	case OpClose:
		return "close"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Arc holds the elliptical-arc parameters of an OpArcTo command.
type Arc struct {
	Radius   common.Vec2
	Rotation float64 // x-axis rotation in degrees
	LargeArc bool
	Sweep    bool
}

// Command is a single absolute drawing command.
//
// Points holds the control points followed by the endpoint:
//
//	OpMoveTo, OpLineTo, OpArcTo: [end]
//	OpCubicTo:                   [c1, c2, end]
//	OpQuadTo:                    [c, end]
//	OpClose:                     [sub-path start]
type Command struct {
	Op     Op
	Points []common.Vec2
	Arc    Arc // only set for OpArcTo
}

// End returns the point the command leaves the pen at.
func (c Command) End() common.Vec2 {
	if len(c.Points) == 0 {
		return common.Vec2{}
	}
	return c.Points[len(c.Points)-1]
}

// Format serializes absolute commands back into path text.
func Format(cmds []Command) string {
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case OpMoveTo:
			b.WriteByte('M')
		case OpLineTo:
			b.WriteByte('L')
		case OpCubicTo:
			b.WriteByte('C')
		case OpQuadTo:
			b.WriteByte('Q')
		case OpArcTo:
			b.WriteByte('A')
			writeNums(&b, c.Arc.Radius.X, c.Arc.Radius.Y, c.Arc.Rotation, flag(c.Arc.LargeArc), flag(c.Arc.Sweep))
			b.WriteByte(' ')
		case OpClose:
			b.WriteByte('Z')
			continue
		}
		for j, p := range c.Points {
			if j > 0 {
				b.WriteByte(' ')
			}
			writeNums(&b, p.X, p.Y)
		}
	}
	return b.String()
}

func writeNums(b *strings.Builder, nums ...float64) {
	for i, n := range nums {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	}
}

func flag(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
