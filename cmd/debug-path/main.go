// debug-path prints the normalized commands of an SVG track.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"apex-sim/internal/log"
	"apex-sim/internal/pathdata"
	"apex-sim/internal/track"
)

func main() {
	points := pflag.BoolP("points", "p", false, "also print the sampled polyline")
	pflag.Parse()
	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: debug-path [--points] <file.svg>")
		os.Exit(2)
	}

	l := log.DevLogger(os.Stderr, log.InfoLevel)
	d, vb, err := track.LoadPathFromSVG(pflag.Arg(0))
	if err != nil {
		l.Fatal("could not read svg", log.ErrorField(err))
	}

	cmds := pathdata.Parse(d)
	fmt.Printf("viewBox: %g %g %g %g\n", vb.MinX, vb.MinY, vb.Width, vb.Height)
	fmt.Printf("commands: %d\n", len(cmds))
	for i, c := range cmds {
		fmt.Printf("%4d  %s\n", i, pathdata.Format([]pathdata.Command{c}))
	}

	if *points {
		for i, p := range track.Sample(cmds, track.DefaultPointBudget) {
			fmt.Printf("%5d  %9.3f %9.3f\n", i, p.X, p.Y)
		}
	}
}
