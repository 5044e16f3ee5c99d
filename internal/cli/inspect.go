package cli

import (
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"apex-sim/internal/pathdata"
	"apex-sim/internal/track"
)

func NewInspectCmd() *cobra.Command {
	var in trackInput
	var withCommands bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "prints a YAML summary of a track's geometry",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := in.resolve(renderOptions().Track)
			if err != nil {
				return err
			}
			g, err := src.Geometry(cmd.Context())
			if err != nil {
				return err
			}
			return writeInspection(cmd.OutOrStdout(), inspect(src.Name(), g, withCommands))
		},
	}
	in.addFlags(cmd)
	cmd.Flags().BoolVar(&withCommands, "commands", false,
		"include the normalized path commands")
	return cmd
}

type inspection struct {
	Track    string             `yaml:"track"`
	Commands int                `yaml:"commands"`
	Ops      map[string]int     `yaml:"ops"`
	Path     string             `yaml:"path,omitempty"`
	Points   int                `yaml:"points"`
	Length   float64            `yaml:"length"`
	Bounds   *boundsSummary     `yaml:"bounds"`
	Sectors  []sectorInspection `yaml:"sectors"`
}

type boundsSummary struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	CenterX float64 `yaml:"centerX"`
	CenterY float64 `yaml:"centerY"`
}

type sectorInspection struct {
	ID     string         `yaml:"id"`
	Label  string         `yaml:"label"`
	Color  string         `yaml:"color"`
	Points int            `yaml:"points"`
	Start  int            `yaml:"start"`
	End    int            `yaml:"end"`
	Bounds *boundsSummary `yaml:"bounds"`
}

func summarizeBounds(b *track.BoundingBox) *boundsSummary {
	if b == nil {
		return nil
	}
	return &boundsSummary{
		X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
		CenterX: b.CenterX, CenterY: b.CenterY,
	}
}

func inspect(name string, g *track.Geometry, withCommands bool) inspection {
	out := inspection{
		Track:    name,
		Commands: len(g.Commands),
		Ops: lo.CountValuesBy(g.Commands, func(c pathdata.Command) string {
			return c.Op.String()
		}),
		Points: len(g.Points),
		Length: g.Points.Length(),
		Bounds: summarizeBounds(g.Bounds),
		Sectors: lo.Map(g.Sectors, func(s track.Sector, _ int) sectorInspection {
			return sectorInspection{
				ID:     s.ID,
				Label:  s.Label,
				Color:  s.Color,
				Points: len(s.Points),
				Start:  s.StartIndex,
				End:    s.EndIndex,
				Bounds: summarizeBounds(s.Bounds),
			}
		}),
	}
	if withCommands {
		out.Path = pathdata.Format(g.Commands)
	}
	return out
}

func writeInspection(w io.Writer, in inspection) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return err
	}
	return enc.Close()
}
