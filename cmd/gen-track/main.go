// gen-track writes a synthetic stadium-shaped track as an SVG asset.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"apex-sim/internal/log"
)

// kappa places cubic control points so that four segments approximate a circle.
const kappa = 0.5522847498

func main() {
	out := pflag.StringP("out", "o", "assets/oval.svg", "output file")
	straight := pflag.Float64("straight", 400, "length of each straight")
	radius := pflag.Float64("radius", 150, "radius of the hairpins")
	margin := pflag.Float64("margin", 25, "space around the track")
	pflag.Parse()

	l := log.DevLogger(os.Stderr, log.InfoLevel)
	if *straight < 0 || *radius <= 0 {
		l.Fatal("straight must be >= 0 and radius > 0")
	}
	if err := os.WriteFile(*out, []byte(stadium(*straight, *radius, *margin)), 0o644); err != nil {
		l.Fatal("could not write track", log.ErrorField(err))
	}
	l.Info("track written", log.String("file", *out))
}

// stadium draws two straights joined by semicircles, clockwise from the
// start of the top straight.
func stadium(straight, r, margin float64) string {
	w := straight + 2*r + 2*margin
	h := 2*r + 2*margin
	left, right := margin+r, margin+r+straight
	top, bottom := margin, margin+2*r
	cy := margin + r
	k := kappa * r

	var d strings.Builder
	fmt.Fprintf(&d, "M%.2f,%.2f ", left, top)
	fmt.Fprintf(&d, "L%.2f,%.2f ", right, top)
	fmt.Fprintf(&d, "C%.2f,%.2f %.2f,%.2f %.2f,%.2f ", right+k, top, right+r, cy-k, right+r, cy)
	fmt.Fprintf(&d, "C%.2f,%.2f %.2f,%.2f %.2f,%.2f ", right+r, cy+k, right+k, bottom, right, bottom)
	fmt.Fprintf(&d, "L%.2f,%.2f ", left, bottom)
	fmt.Fprintf(&d, "C%.2f,%.2f %.2f,%.2f %.2f,%.2f ", left-k, bottom, left-r, cy+k, left-r, cy)
	fmt.Fprintf(&d, "C%.2f,%.2f %.2f,%.2f %.2f,%.2f Z", left-r, cy-k, left-k, top, left, top)

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f">
  <path d="%s" fill="none" stroke="#ffffff" stroke-width="4"/>
</svg>
`, w, h, d.String())
}
