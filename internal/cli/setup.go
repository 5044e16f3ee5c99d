package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"apex-sim/internal/assets"
	"apex-sim/internal/camera"
	"apex-sim/internal/catalog"
	"apex-sim/internal/config"
	"apex-sim/internal/log"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

const (
	defaultCacheTTL = 5 * time.Minute
	fetchTimeout    = 10 * time.Second
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// setupLogger installs the process-wide logger from the log flags.
func setupLogger() error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true))
	default:
		logger = log.DevLogger(os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true))
	}
	filtered, err := logger.WithFilter(config.LogFilter)
	if err != nil {
		return fmt.Errorf("log filter: %w", err)
	}
	log.ResetDefault(filtered)
	return nil
}

// loadCatalog returns the catalog file if one is configured, else the
// embedded catalog.
func loadCatalog() (*catalog.Catalog, error) {
	if config.CatalogFile == "" {
		return catalog.Default(), nil
	}
	f, err := os.Open(config.CatalogFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.Load(f)
}

// assetSource searches the asset dir, then the embedded assets, then the
// asset URL.
func assetSource() assets.Source {
	var chain assets.Chain
	if config.AssetDir != "" {
		chain = append(chain, assets.DirSource{Dir: config.AssetDir})
	}
	chain = append(chain, assets.FSSource{FS: catalog.Assets, Dir: catalog.AssetDir})
	if config.AssetBaseURL != "" {
		chain = append(chain, assets.HTTPSource{
			BaseURL: config.AssetBaseURL,
			Client:  &http.Client{Timeout: fetchTimeout},
		})
	}
	return chain
}

func newPathStore(cat *catalog.Catalog) *assets.PathStore {
	return assets.NewPathStore(cat, assetSource(), config.CacheTTL, log.Default().Named("assets"))
}

// renderOptions maps the configuration onto renderer options.
func renderOptions() scene.Options {
	opts := scene.DefaultOptions()
	opts.Track.PointBudget = config.PointBudget
	opts.Track.SectorCount = config.SectorCount
	opts.Track.Sampler.LineSpacing = config.LineSpacing
	opts.Track.Sampler.CubicSteps = config.CubicSteps
	opts.Track.Sampler.QuadSteps = config.QuadSteps
	opts.Track.Sampler.ArcSteps = config.ArcSteps

	opts.Viewport = camera.Size{Width: float64(config.ViewportWidth), Height: float64(config.ViewportHeight)}
	opts.FitPadding = config.FitPadding
	opts.ZoomPadding = config.ZoomPadding
	opts.ZoomDuration = config.ZoomDuration
	opts.ResetDuration = config.ResetDuration
	opts.CarSpeed = config.CarSpeed
	opts.Smoothing = config.Smoothing
	opts.TickRate = config.TickRate
	opts.Easing = config.Easing
	return opts
}

// trackInput selects a catalog track or a standalone SVG file.
type trackInput struct {
	trackID string
	svgFile string
}

func (in *trackInput) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.trackID, "track", "t", "monza", "catalog track id")
	cmd.Flags().StringVar(&in.svgFile, "svg", "", "SVG file to load instead of a catalog track")
	cmd.MarkFlagsMutuallyExclusive("track", "svg")
}

// source describes where path data comes from. Track is nil for SVG files.
type source struct {
	name    string
	Track   *catalog.Track
	Options track.Options
	fetch   func(ctx context.Context) (string, error)
}

// Name is the track name or the SVG file path.
func (s *source) Name() string { return s.name }

// resolve looks up the catalog entry; the path data itself is fetched
// lazily through the returned source.
func (in *trackInput) resolve(base track.Options) (*source, error) {
	if in.svgFile != "" {
		file := in.svgFile
		return &source{
			name:    file,
			Options: base,
			fetch: func(context.Context) (string, error) {
				d, _, err := track.LoadPathFromSVG(file)
				return d, err
			},
		}, nil
	}

	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	t, err := cat.Get(in.trackID)
	if err != nil {
		return nil, err
	}
	store := newPathStore(cat)
	return &source{
		name:    t.Name,
		Track:   t,
		Options: t.Options(base),
		fetch: func(ctx context.Context) (string, error) {
			return store.PathData(ctx, t.ID)
		},
	}, nil
}

// Geometry fetches the path data and builds the track.
func (s *source) Geometry(ctx context.Context) (*track.Geometry, error) {
	d, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return track.Build(d, s.Options), nil
}

// anchor is a labelled lap position shown as an overlay.
type anchor struct {
	Label string
	At    float64
}

// anchors lists corner numbers for catalog tracks.
func (s *source) anchors() []anchor {
	if s.Track == nil {
		return nil
	}
	out := make([]anchor, 0, len(s.Track.Corners))
	for _, c := range s.Track.Corners {
		out = append(out, anchor{Label: c.Number, At: c.At})
	}
	return out
}

// sectorCorners lists corner names per sector for catalog tracks.
func (s *source) sectorCorners() map[string][]string {
	if s.Track == nil {
		return nil
	}
	out := make(map[string][]string, len(s.Track.Sectors))
	for _, sec := range s.Track.Sectors {
		out[sec.ID] = lo.Map(s.Track.SectorCorners(sec.ID), func(c catalog.Corner, _ int) string {
			return c.Number + " " + c.Name
		})
	}
	return out
}
