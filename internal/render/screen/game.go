// Package screen hosts the scene in an ebiten window.
package screen

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/log"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

// Window defaults
const (
	WindowWidth  = 1200
	WindowHeight = 800
)

var (
	ColorBackground = color.RGBA{10, 10, 16, 255}
	ColorPanel      = color.RGBA{0, 0, 0, 180}
	ColorMarker     = color.RGBA{255, 255, 255, 200}
)

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Marker is a labelled position along the lap, such as a corner number.
type Marker struct {
	Label string
	At    float64 // lap fraction
}

// Load is the result of fetching a track's path data.
type Load struct {
	PathData string
	Sectors  []track.SectorDef
	Err      error
}

// Config configures the window.
type Config struct {
	Title     string
	TrackName string
	Markers   []Marker
	Corners   map[string][]string // corner names per sector id
	Width     int
	Height    int
}

// Game is the ebiten host for a scene.Renderer. Geometry arrives
// asynchronously on the load channel; until then frames are empty.
type Game struct {
	r      *scene.Renderer
	cfg    Config
	load   <-chan Load
	log    *log.Logger
	canvas canvas

	status  string
	cam     camera.State
	anchors []common.Vec2

	width, height int
}

// New creates the window host.
func New(r *scene.Renderer, cfg Config, load <-chan Load) *Game {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = WindowWidth, WindowHeight
	}
	g := &Game{
		r:      r,
		cfg:    cfg,
		load:   load,
		log:    log.Default().Named("screen"),
		status: "loading",
		width:  cfg.Width,
		height: cfg.Height,
	}
	r.SetViewportSize(float64(cfg.Width), float64(cfg.Height))
	r.OnCameraUpdate(func(s camera.State) { g.cam = s })
	return g
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	defer g.r.Dispose()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (g *Game) Update() error {
	g.receive()
	g.r.SetViewportSize(float64(g.width), float64(g.height))

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		toggleDebug()
	}
	if g.r.Ready() {
		g.handleInput()
	}
	g.r.Tick()
	return nil
}

func (g *Game) receive() {
	if g.load == nil {
		return
	}
	select {
	case res, ok := <-g.load:
		g.load = nil
		if !ok {
			return
		}
		if res.Err != nil {
			g.status = "load failed"
			g.log.Error("could not load track", log.ErrorField(res.Err))
			return
		}
		if !g.r.LoadTrack(res.PathData, res.Sectors) {
			g.status = "no geometry"
			return
		}
		g.status = "ready"
		g.anchors = g.anchors[:0]
		for _, m := range g.cfg.Markers {
			p, _ := g.r.Anchor(m.At)
			g.anchors = append(g.anchors, p)
		}
	default:
	}
}

func (g *Game) handleInput() {
	ids := g.r.SectorIDs()
	for i, key := range digitKeys {
		if i < len(ids) && inpututil.IsKeyJustPressed(key) {
			g.r.ToggleSector(ids[i])
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit0) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.r.SelectSector("")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.r.ToggleCar()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if s, ok := g.r.SectorAt(common.Vec2{X: float64(x), Y: float64(y)}); ok {
			g.r.ToggleSector(s.ID)
		} else {
			g.r.SelectSector("")
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.dst = screen
	g.r.Draw(&g.canvas)

	// Corner numbers follow the smoothed camera.
	for i, p := range g.anchors {
		s := g.cam.ToScreen(p)
		vector.FillCircle(screen, float32(s.X), float32(s.Y), 9, ColorPanel, true)
		ebitenutil.DebugPrintAt(screen, g.cfg.Markers[i].Label, int(s.X)-3*len(g.cfg.Markers[i].Label), int(s.Y)-8)
	}

	hud := g.hud()
	lines := strings.Count(hud, "\n") + 1
	vector.FillRect(screen, 0, 0, 200, float32(lines*16+6), ColorPanel, true)
	ebitenutil.DebugPrint(screen, hud)
}

func (g *Game) hud() string {
	var b strings.Builder
	b.WriteString("TRACK MONITOR\n")
	b.WriteString("----------------\n")
	fmt.Fprintf(&b, "Track:  %s\n", g.cfg.TrackName)
	fmt.Fprintf(&b, "Status: %s\n", g.status)

	sector := "full"
	if s := g.r.ActiveSector(); s != nil {
		sector = s.Label
	}
	fmt.Fprintf(&b, "Sector: %s\n", sector)
	if s := g.r.ActiveSector(); s != nil {
		for _, name := range g.cfg.Corners[s.ID] {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	fmt.Fprintf(&b, "Zoom:   %.2fx\n", g.cam.Scale)

	car := g.r.Car()
	if car.Active {
		fmt.Fprintf(&b, "Car:    %.1f%% lap %d\n", car.Progress*100, car.Laps+1)
		if car.LastLap > 0 {
			fmt.Fprintf(&b, "Last:   %.2fs\n", float64(car.LastLap)/ebiten.DefaultTPS)
		}
	} else {
		b.WriteString("Car:    stopped\n")
	}
	b.WriteString("\n1-9 sector  0 reset\nSPACE car  D debug\nQ quit")
	return b.String()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// toggleDebug flips the shared log level between debug and info.
func toggleDebug() {
	l := log.Default()
	if l.Level() == log.DebugLevel {
		l.SetLevel(log.InfoLevel)
		return
	}
	l.SetLevel(log.DebugLevel)
	l.Info("debug logging enabled")
}
