package camera

import (
	"fmt"
	"strings"
)

// Easing maps linear progress t in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear performs no easing.
func Linear(t float64) float64 { return t }

// EaseInQuad accelerates from zero velocity.
func EaseInQuad(t float64) float64 { return t * t }

// EaseOutQuad decelerates to zero velocity.
func EaseOutQuad(t float64) float64 { return t * (2 - t) }

// EaseInOutQuad accelerates until halfway, then decelerates.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// EaseInOutCubic is a steeper variant of EaseInOutQuad.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	t2 := -2*t + 2
	return 1 - t2*t2*t2/2
}

// DefaultEasing matches the power2.inOut curve of common tween libraries.
var DefaultEasing Easing = EaseInOutCubic

var easings = map[string]Easing{
	"linear":     Linear,
	"inquad":     EaseInQuad,
	"outquad":    EaseOutQuad,
	"inoutquad":  EaseInOutQuad,
	"inoutcubic": EaseInOutCubic,
}

// ParseEasing looks up an easing by name, e.g. "inOutCubic" or "linear".
func ParseEasing(name string) (Easing, error) {
	e, ok := easings[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return e, nil
}
