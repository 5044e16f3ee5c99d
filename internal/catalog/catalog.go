// Package catalog holds the static metadata of the known tracks: sector
// colors, corner names and positions along the lap, DRS zones and the
// location of each track's vector asset.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"apex-sim/internal/track"
)

var ErrUnknownTrack = errors.New("unknown track")

//go:embed catalog.yaml
var defaultCatalog []byte

// Assets contains the vector assets referenced by the default catalog.
//
//go:embed assets/*.svg
var Assets embed.FS

// AssetDir is the directory inside Assets that holds the SVG files.
const AssetDir = "assets"

type LapRecord struct {
	Time   string `yaml:"time" json:"time"`
	Driver string `yaml:"driver" json:"driver"`
}

type Stats struct {
	Length    string    `yaml:"length" json:"length"`
	FirstGP   int       `yaml:"firstGP" json:"firstGP"`
	Laps      int       `yaml:"laps" json:"laps"`
	LapRecord LapRecord `yaml:"lapRecord" json:"lapRecord"`
}

type Sector struct {
	ID      string `yaml:"id" json:"id"`
	Label   string `yaml:"label" json:"label"`
	Color   string `yaml:"color" json:"color"`
	Corners []int  `yaml:"corners" json:"corners,omitempty"`
}

// Corner is a numbered turn. At is the lap fraction the corner sits at.
type Corner struct {
	ID     int     `yaml:"id" json:"id"`
	Number string  `yaml:"number" json:"number"`
	Name   string  `yaml:"name" json:"name"`
	At     float64 `yaml:"at" json:"at"`
}

type DRSZone struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Detection  float64 `yaml:"detection" json:"detection"`
	Activation float64 `yaml:"activation" json:"activation"`
	Color      string  `yaml:"color" json:"color"`
}

type SpeedTrap struct {
	At    float64 `yaml:"at" json:"at"`
	Label string  `yaml:"label" json:"label"`
}

// Track is one catalog entry.
type Track struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Country     string     `yaml:"country" json:"country"`
	SVGPath     string     `yaml:"svgPath" json:"svgPath"`
	ViewBox     string     `yaml:"viewBox" json:"viewBox"`
	Stats       Stats      `yaml:"stats" json:"stats"`
	SectorCount int        `yaml:"sectorCount" json:"sectorCount"`
	Sectors     []Sector   `yaml:"sectors" json:"sectors"`
	Corners     []Corner   `yaml:"corners" json:"corners"`
	DRSZones    []DRSZone  `yaml:"drsZones" json:"drsZones,omitempty"`
	SpeedTrap   *SpeedTrap `yaml:"speedTrap" json:"speedTrap,omitempty"`
}

// Catalog is an ordered set of tracks.
type Catalog struct {
	Tracks []Track `yaml:"tracks"`
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
})

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	for i := range c.Tracks {
		t := &c.Tracks[i]
		if t.ID == "" {
			return fmt.Errorf("track #%d: missing id", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("track %s: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if t.SVGPath == "" {
			return fmt.Errorf("track %s: missing svgPath", t.ID)
		}
		if t.SectorCount < 0 {
			return fmt.Errorf("track %s: negative sectorCount", t.ID)
		}
		for _, cr := range t.Corners {
			if !isLapFraction(cr.At) {
				return fmt.Errorf("track %s: corner %d: position %v outside [0,1)", t.ID, cr.ID, cr.At)
			}
		}
		for _, z := range t.DRSZones {
			if !isLapFraction(z.Detection) || !isLapFraction(z.Activation) {
				return fmt.Errorf("track %s: drs zone %s: position outside [0,1)", t.ID, z.ID)
			}
		}
		if t.SpeedTrap != nil && !isLapFraction(t.SpeedTrap.At) {
			return fmt.Errorf("track %s: speed trap outside [0,1)", t.ID)
		}
	}
	return nil
}

func isLapFraction(f float64) bool { return f >= 0 && f < 1 }

// Get returns the track with the given id.
func (c *Catalog) Get(id string) (*Track, error) {
	_, idx, ok := lo.FindIndexOf(c.Tracks, func(t Track) bool { return t.ID == id })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}
	return &c.Tracks[idx], nil
}

// IDs lists the track ids in catalog order.
func (c *Catalog) IDs() []string {
	return lo.Map(c.Tracks, func(t Track, _ int) string { return t.ID })
}

// SectorDefs returns the sector metadata in traversal order.
func (t *Track) SectorDefs() []track.SectorDef {
	return lo.Map(t.Sectors, func(s Sector, _ int) track.SectorDef {
		return track.SectorDef{ID: s.ID, Color: s.Color, Label: s.Label}
	})
}

// Options returns base with the track's sector settings applied. The
// sector count is sectorCount, else the number of sectors, else the default.
func (t *Track) Options(base track.Options) track.Options {
	base.Sectors = t.SectorDefs()
	switch {
	case t.SectorCount > 0:
		base.SectorCount = t.SectorCount
	case len(t.Sectors) > 0:
		base.SectorCount = len(t.Sectors)
	default:
		base.SectorCount = track.DefaultSectorCount
	}
	return base
}

// SectorCorners returns the corners listed for a sector.
func (t *Track) SectorCorners(sectorID string) []Corner {
	s, ok := lo.Find(t.Sectors, func(s Sector) bool { return s.ID == sectorID })
	if !ok {
		return nil
	}
	return lo.Filter(t.Corners, func(c Corner, _ int) bool { return lo.Contains(s.Corners, c.ID) })
}
