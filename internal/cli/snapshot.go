package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"apex-sim/internal/common"
	"apex-sim/internal/log"
	"apex-sim/internal/render/snapshot"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

var errNoGeometry = errors.New("path produced no track geometry")

type snapshotArgs struct {
	in       trackInput
	sector   string
	ticks    int
	carTicks int
	out      string
	labels   bool
}

func NewSnapshotCmd() *cobra.Command {
	var a snapshotArgs
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "renders a settled frame to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, &a)
		},
	}
	a.in.addFlags(cmd)
	cmd.Flags().StringVarP(&a.sector, "sector", "s", "",
		"sector to zoom to")
	cmd.Flags().IntVar(&a.ticks, "ticks", 120,
		"ticks to run before rendering")
	cmd.Flags().IntVar(&a.carTicks, "car-ticks", 0,
		"ticks to run the car for (0 leaves it parked)")
	cmd.Flags().StringVarP(&a.out, "out", "o", "track.png",
		"output file")
	cmd.Flags().BoolVar(&a.labels, "labels", true,
		"draw corner numbers")
	return cmd
}

func runSnapshot(cmd *cobra.Command, a *snapshotArgs) error {
	opts := renderOptions()
	src, err := a.in.resolve(opts.Track)
	if err != nil {
		return err
	}
	g, err := src.Geometry(cmd.Context())
	if err != nil {
		return err
	}
	l := log.Default().Named("snapshot")
	r := scene.NewRenderer(opts, l.Named("scene"))
	defer r.Dispose()

	c, err := settle(r, g, a)
	if err != nil {
		return err
	}
	if a.labels {
		if err := addAnchorLabels(c, r, src.anchors()); err != nil {
			return err
		}
	}
	if err := c.Save(a.out); err != nil {
		return err
	}
	l.Info("snapshot written", log.String("file", a.out), log.String("track", src.Name()))
	return nil
}

// settle installs the geometry, applies the requested state and runs the
// scene until the camera has converged.
func settle(r *scene.Renderer, g *track.Geometry, a *snapshotArgs) (*snapshot.Canvas, error) {
	if !r.SetGeometry(g) {
		return nil, errNoGeometry
	}
	if a.sector != "" && !r.SelectSector(a.sector) {
		return nil, fmt.Errorf("unknown sector %q (have %v)", a.sector, r.SectorIDs())
	}
	if a.carTicks > 0 {
		r.StartCarAnimation()
	}
	for i := range max(a.ticks, a.carTicks) {
		if i == a.carTicks {
			r.StopCarAnimation()
		}
		r.Tick()
	}
	c := snapshot.Render(r)
	return c, c.Err()
}

func addAnchorLabels(c *snapshot.Canvas, r *scene.Renderer, anchors []anchor) error {
	cam := r.Camera()
	pts := make([]common.Vec2, 0, len(anchors))
	labels := make([]string, 0, len(anchors))
	for _, a := range anchors {
		p, ok := r.Anchor(a.At)
		if !ok {
			continue
		}
		pts = append(pts, cam.ToScreen(p))
		labels = append(labels, a.Label)
	}
	if len(pts) == 0 {
		return nil
	}
	if err := c.AddLabels(pts, labels); err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	return nil
}
