package cli

import (
	"github.com/spf13/cobra"

	"apex-sim/internal/config"
	"apex-sim/internal/log"
	"apex-sim/internal/render/screen"
	"apex-sim/internal/scene"
)

func NewViewCmd() *cobra.Command {
	var in trackInput
	cmd := &cobra.Command{
		Use:   "view",
		Short: "opens a window showing the track",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, &in)
		},
	}
	in.addFlags(cmd)
	return cmd
}

func runView(cmd *cobra.Command, in *trackInput) error {
	opts := renderOptions()
	src, err := in.resolve(opts.Track)
	if err != nil {
		return err
	}
	opts.Track = src.Options

	r := scene.NewRenderer(opts, log.Default().Named("scene"))

	load := make(chan screen.Load, 1)
	go func() {
		d, err := src.fetch(cmd.Context())
		load <- screen.Load{PathData: d, Sectors: src.Options.Sectors, Err: err}
	}()

	markers := make([]screen.Marker, 0)
	for _, a := range src.anchors() {
		markers = append(markers, screen.Marker{Label: a.Label, At: a.At})
	}
	g := screen.New(r, screen.Config{
		Corners:   src.sectorCorners(),
		Title:     "apexsim - " + src.Name(),
		TrackName: src.Name(),
		Markers:   markers,
		Width:     config.ViewportWidth,
		Height:    config.ViewportHeight,
	}, load)
	return screen.Run(g)
}
