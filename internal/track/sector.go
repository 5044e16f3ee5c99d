package track

import "fmt"

// DefaultSectorCount is used when track metadata does not say otherwise.
const DefaultSectorCount = 3

// SectorDef is the metadata a host supplies per sector, in traversal order.
type SectorDef struct {
	ID    string `json:"id" yaml:"id"`
	Color string `json:"color" yaml:"color"`
	Label string `json:"label" yaml:"label"`
}

// Sector is a contiguous, labeled slice of a track polyline.
type Sector struct {
	ID         string       `json:"id"`
	Ordinal    int          `json:"ordinal"` // 1-based position in traversal order
	Points     Polyline     `json:"-"`
	Bounds     *BoundingBox `json:"bounds"`
	Color      string       `json:"color"`
	Label      string       `json:"label"`
	StartIndex int          `json:"startIndex"`
	EndIndex   int          `json:"endIndex"` // exclusive
}

// DividePath splits points into count contiguous sectors of floor(len/count)
// points each, the last sector absorbing the remainder. The split is by point
// index, not by distance: curves are sampled more densely than straights, so
// sector boundaries are not distance-proportional.
//
// Empty input or a non-positive count yields no sectors.
func DividePath(points Polyline, count int) []Sector {
	if len(points) == 0 || count <= 0 {
		return nil
	}
	per := len(points) / count
	sectors := make([]Sector, 0, count)
	for i := 0; i < count; i++ {
		start := i * per
		end := (i + 1) * per
		if i == count-1 {
			end = len(points)
		}
		slice := points[start:end:end]
		sectors = append(sectors, Sector{
			ID:         fmt.Sprintf("sector%d", i+1),
			Ordinal:    i + 1,
			Points:     slice,
			Bounds:     Bounds(slice),
			Label:      fmt.Sprintf("SECTOR %d", i+1),
			StartIndex: start,
			EndIndex:   end,
		})
	}
	return sectors
}

// ApplyDefs copies ids, colors and labels from defs onto sectors by position.
// Sectors without a matching definition keep their generated values.
func ApplyDefs(sectors []Sector, defs []SectorDef) {
	for i := range sectors {
		if i >= len(defs) {
			return
		}
		d := defs[i]
		if d.ID != "" {
			sectors[i].ID = d.ID
		}
		if d.Color != "" {
			sectors[i].Color = d.Color
		}
		if d.Label != "" {
			sectors[i].Label = d.Label
		}
	}
}
