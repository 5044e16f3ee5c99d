package config

import "time"

// this holds the resolved configuration values from CLI, config file and env
//
//nolint:lll // readablity
var (
	LogLevel  string // sets the log level (zap log level values)
	LogFormat string // text vs json
	LogFilter string // zapfilter rules, e.g. "*:* -debug:camera"

	CatalogFile  string        // optional YAML catalog replacing the embedded one
	AssetDir     string        // directory searched for track SVGs before the embedded assets
	AssetBaseURL string        // base URL searched for track SVGs when not found locally
	CacheTTL     time.Duration // how long fetched path data stays cached

	PointBudget int     // max number of polyline points per track
	LineSpacing float64 // track units between samples on straight lines
	CubicSteps  int     // samples per cubic curve
	QuadSteps   int     // samples per quadratic curve
	ArcSteps    int     // samples per arc
	SectorCount int     // sectors per track when the catalog does not define them

	Smoothing     float64       // camera smoothing factor per nominal tick
	TickRate      float64       // nominal ticks per second
	FitPadding    float64       // viewport padding when fitting the whole track
	ZoomPadding   float64       // viewport padding when zooming to a sector
	ZoomDuration  time.Duration // duration of the zoom-to-sector tween
	ResetDuration time.Duration // duration of the zoom-out tween
	Easing        string        // easing curve of the zoom tweens
	CarSpeed      float64       // car progress per tick (lap fraction)

	ViewportWidth  int // initial viewport width in pixels
	ViewportHeight int // initial viewport height in pixels

	ServerAddr string // listen addr for the HTTP server
	StreamFPS  int    // frames per second pushed to websocket clients
)
