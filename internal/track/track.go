package track

import (
	"github.com/samber/lo"

	"apex-sim/internal/pathdata"
)

// Options controls how a path description becomes track geometry.
type Options struct {
	Sampler     Sampler
	PointBudget int
	SectorCount int
	Sectors     []SectorDef
}

// DefaultOptions returns the default sampling and sectoring settings.
func DefaultOptions() Options {
	return Options{
		Sampler:     DefaultSampler(),
		PointBudget: DefaultPointBudget,
		SectorCount: DefaultSectorCount,
	}
}

// Geometry is everything derived from one path description. It is rebuilt
// from scratch whenever the track changes.
type Geometry struct {
	Commands []pathdata.Command
	Points   Polyline
	Bounds   *BoundingBox
	Sectors  []Sector
}

// Build parses, samples and sectors a path description. An unusable path
// yields an empty Geometry rather than an error.
func Build(pathText string, opts Options) *Geometry {
	cmds := pathdata.Parse(pathText)
	pts := opts.Sampler.Sample(cmds, opts.PointBudget)

	count := opts.SectorCount
	if count <= 0 {
		count = max(len(opts.Sectors), DefaultSectorCount)
	}
	sectors := DividePath(pts, count)
	ApplyDefs(sectors, opts.Sectors)

	return &Geometry{
		Commands: cmds,
		Points:   pts,
		Bounds:   Bounds(pts),
		Sectors:  sectors,
	}
}

// Empty reports whether there is no geometry to draw.
func (g *Geometry) Empty() bool {
	return g == nil || len(g.Points) == 0
}

// Sector returns the sector with the given id.
func (g *Geometry) Sector(id string) (*Sector, bool) {
	if g == nil {
		return nil, false
	}
	_, idx, ok := lo.FindIndexOf(g.Sectors, func(s Sector) bool { return s.ID == id })
	if !ok {
		return nil, false
	}
	return &g.Sectors[idx], true
}

// SectorAtIndex returns the sector containing polyline index idx.
func (g *Geometry) SectorAtIndex(idx int) (*Sector, bool) {
	if g == nil {
		return nil, false
	}
	_, i, ok := lo.FindIndexOf(g.Sectors, func(s Sector) bool {
		return idx >= s.StartIndex && idx < s.EndIndex
	})
	if !ok {
		return nil, false
	}
	return &g.Sectors[i], true
}
