package pathdata

import "apex-sim/internal/common"

// Parse interprets path text into absolute commands.
//
// Parsing is best-effort: malformed numbers, unknown letters and incomplete
// parameter groups are skipped. An input with nothing usable yields an empty
// result, which callers treat as "no track geometry available".
func Parse(d string) []Command {
	n := normalizer{}
	for _, seg := range tokenize(d) {
		n.segment(seg)
	}
	return n.out
}

// normalizer tracks the pen state needed to turn relative and shorthand
// commands into absolute ones.
type normalizer struct {
	out      []Command
	current  common.Vec2
	start    common.Vec2
	lastCtrl common.Vec2
	lastCode byte // upper-case code of the previous emitted group
}

func (n *normalizer) segment(seg segment) {
	code := upper(seg.code)
	relative := seg.code != code

	if code == 'Z' {
		n.emit(Command{Op: OpClose, Points: []common.Vec2{n.start}})
		n.current = n.start
		n.lastCode = 'Z'
		return
	}

	size := arity[code]
	for g := 0; g+size <= len(seg.params); g += size {
		p := seg.params[g : g+size]
		// extra pairs after a move are implicit lines
		c := code
		if code == 'M' && g > 0 {
			c = 'L'
		}
		n.group(c, relative, p)
	}
}

func (n *normalizer) abs(relative bool, x, y float64) common.Vec2 {
	if relative {
		return common.Vec2{X: n.current.X + x, Y: n.current.Y + y}
	}
	return common.Vec2{X: x, Y: y}
}

func (n *normalizer) group(code byte, relative bool, p []float64) {
	switch code {
	case 'M':
		end := n.abs(relative, p[0], p[1])
		n.emit(Command{Op: OpMoveTo, Points: []common.Vec2{end}})
		n.start = end
		n.advance(code, end, end)

	case 'L':
		end := n.abs(relative, p[0], p[1])
		n.emit(Command{Op: OpLineTo, Points: []common.Vec2{end}})
		n.advance(code, end, end)

	case 'H':
		end := common.Vec2{X: p[0], Y: n.current.Y}
		if relative {
			end.X += n.current.X
		}
		n.emit(Command{Op: OpLineTo, Points: []common.Vec2{end}})
		n.advance(code, end, end)

	case 'V':
		end := common.Vec2{X: n.current.X, Y: p[0]}
		if relative {
			end.Y += n.current.Y
		}
		n.emit(Command{Op: OpLineTo, Points: []common.Vec2{end}})
		n.advance(code, end, end)

	case 'C':
		c1 := n.abs(relative, p[0], p[1])
		c2 := n.abs(relative, p[2], p[3])
		end := n.abs(relative, p[4], p[5])
		n.emit(Command{Op: OpCubicTo, Points: []common.Vec2{c1, c2, end}})
		n.advance(code, c2, end)

	case 'S':
		c1 := n.current
		if n.lastCode == 'C' || n.lastCode == 'S' {
			c1 = n.current.Reflect(n.lastCtrl)
		}
		c2 := n.abs(relative, p[0], p[1])
		end := n.abs(relative, p[2], p[3])
		n.emit(Command{Op: OpCubicTo, Points: []common.Vec2{c1, c2, end}})
		n.advance(code, c2, end)

	case 'Q':
		c := n.abs(relative, p[0], p[1])
		end := n.abs(relative, p[2], p[3])
		n.emit(Command{Op: OpQuadTo, Points: []common.Vec2{c, end}})
		n.advance(code, c, end)

	case 'T':
		c := n.current
		if n.lastCode == 'Q' || n.lastCode == 'T' {
			c = n.current.Reflect(n.lastCtrl)
		}
		end := n.abs(relative, p[0], p[1])
		n.emit(Command{Op: OpQuadTo, Points: []common.Vec2{c, end}})
		n.advance(code, c, end)

	case 'A':
		end := n.abs(relative, p[5], p[6])
		n.emit(Command{
			Op:     OpArcTo,
			Points: []common.Vec2{end},
			Arc: Arc{
				Radius:   common.Vec2{X: p[0], Y: p[1]},
				Rotation: p[2],
				LargeArc: p[3] != 0,
				Sweep:    p[4] != 0,
			},
		})
		n.advance(code, end, end)
	}
}

func (n *normalizer) advance(code byte, ctrl, end common.Vec2) {
	n.lastCode = code
	n.lastCtrl = ctrl
	n.current = end
}

func (n *normalizer) emit(c Command) {
	n.out = append(n.out, c)
}
