// Package scene composes the track geometry, camera and car into frames
// and exposes the control surface used by the hosts.
package scene

import (
	"time"

	"github.com/samber/lo"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/log"
	"apex-sim/internal/physics"
	"apex-sim/internal/track"
)

const (
	SectorWidth       = 10.0
	SectorGlow        = 20.0
	ActiveSectorWidth = 15.0
	ActiveSectorGlow  = 30.0
	CarGlow           = 20.0
	PickRadius        = 20.0 // screen pixels
)

// Options configures a Renderer.
type Options struct {
	Track         track.Options
	Viewport      camera.Size
	FitPadding    float64
	ZoomPadding   float64
	ZoomDuration  time.Duration
	ResetDuration time.Duration
	CarSpeed      float64 // lap fraction per nominal tick
	Smoothing     float64
	TickRate      float64
	Easing        string // zoom curve name, see camera.ParseEasing
}

// DefaultOptions returns the stock renderer settings.
func DefaultOptions() Options {
	return Options{
		Track:         track.DefaultOptions(),
		Viewport:      camera.Size{Width: 1200, Height: 800},
		FitPadding:    camera.DefaultFitPadding,
		ZoomPadding:   camera.DefaultZoomPadding,
		ZoomDuration:  camera.DefaultZoomDuration,
		ResetDuration: camera.DefaultResetDuration,
		CarSpeed:      physics.DefaultSpeed,
		Smoothing:     camera.DefaultSmoothing,
		TickRate:      camera.DefaultTickRate,
		Easing:        "inOutCubic",
	}
}

// CameraObserver is called once per tick with the camera state after the
// smoothing step.
type CameraObserver func(camera.State)

// Renderer owns all mutable scene state. It is not safe for concurrent use:
// callers either drive it from a single goroutine or go through Loop.Post.
type Renderer struct {
	opts     Options
	log      *log.Logger
	viewport camera.Size
	ease     camera.Easing

	geom      *track.Geometry
	cam       *camera.Camera
	car       *physics.Car
	active    *track.Sector
	observers []CameraObserver
	disposed  bool
}

// NewRenderer creates a renderer without geometry. Frames are no-ops until
// LoadTrack succeeds.
func NewRenderer(opts Options, l *log.Logger) *Renderer {
	if l == nil {
		l = log.Default().Named("scene")
	}
	if opts.TickRate <= 0 {
		opts.TickRate = camera.DefaultTickRate
	}
	r := &Renderer{opts: opts, log: l, viewport: opts.Viewport, ease: camera.DefaultEasing}
	if opts.Easing != "" {
		ease, err := camera.ParseEasing(opts.Easing)
		if err != nil {
			l.Warn("falling back to default easing", log.ErrorField(err))
		} else {
			r.ease = ease
		}
	}
	r.reset(nil)
	return r
}

func (r *Renderer) reset(g *track.Geometry) {
	r.geom = g
	r.cam = camera.New(
		camera.WithSmoothing(r.opts.Smoothing),
		camera.WithTickRate(r.opts.TickRate),
		camera.WithEasing(r.ease))
	var pts track.Polyline
	if g != nil {
		pts = g.Points
	}
	r.car = physics.NewCar(pts)
	r.active = nil
}

// LoadTrack replaces the current track with the geometry built from
// pathText. Camera and car state are discarded. It reports whether any
// geometry resulted.
func (r *Renderer) LoadTrack(pathText string, defs []track.SectorDef) bool {
	opts := r.opts.Track
	opts.Sectors = defs
	return r.SetGeometry(track.Build(pathText, opts))
}

// SetGeometry installs prebuilt geometry.
func (r *Renderer) SetGeometry(g *track.Geometry) bool {
	if r.disposed {
		return false
	}
	r.reset(g)
	if g.Empty() {
		r.log.Warn("no track geometry")
		return false
	}
	r.cam.FitToView(g.Bounds, r.viewport, r.opts.FitPadding)
	r.log.Info("track loaded",
		log.Int("commands", len(g.Commands)),
		log.Int("points", len(g.Points)),
		log.Int("sectors", len(g.Sectors)))
	return true
}

// Ready reports whether there is geometry to draw.
func (r *Renderer) Ready() bool { return !r.disposed && !r.geom.Empty() }

// SelectSector zooms to the sector with the given id and highlights it. An
// empty id resets the zoom. Unknown ids are ignored.
func (r *Renderer) SelectSector(id string) bool {
	if id == "" {
		return r.ResetZoom()
	}
	if !r.Ready() {
		return false
	}
	s, ok := r.geom.Sector(id)
	if !ok {
		r.log.Debug("unknown sector", log.String("sector", id))
		return false
	}
	if !r.cam.ZoomToBounds(s.Bounds, r.viewport, r.opts.ZoomPadding, r.opts.ZoomDuration) {
		return false
	}
	r.active = s
	r.log.Debug("zoom to sector", log.String("sector", id), log.Any("target", r.cam.Target()))
	return true
}

// ToggleSector selects id, or, when id is already active, zooms back out
// and stops the car.
func (r *Renderer) ToggleSector(id string) bool {
	if r.active != nil && r.active.ID == id {
		r.StopCarAnimation()
		return r.ResetZoom()
	}
	return r.SelectSector(id)
}

// ResetZoom clears the active sector and eases back to the full track.
func (r *Renderer) ResetZoom() bool {
	if !r.Ready() {
		return false
	}
	r.active = nil
	return r.cam.ResetZoom(r.geom.Bounds, r.viewport, r.opts.FitPadding, r.opts.ResetDuration)
}

// SetViewportSize records the output size and re-fits the track. An active
// sector stays highlighted and is zoomed to again from the new framing.
func (r *Renderer) SetViewportSize(width, height float64) {
	if r.disposed || width <= 0 || height <= 0 {
		return
	}
	size := camera.Size{Width: width, Height: height}
	if size == r.viewport {
		return
	}
	r.viewport = size
	if r.geom.Empty() {
		return
	}
	r.cam.FitToView(r.geom.Bounds, r.viewport, r.opts.FitPadding)
	if r.active != nil {
		r.cam.ZoomToBounds(r.active.Bounds, r.viewport, r.opts.ZoomPadding, r.opts.ZoomDuration)
	}
}

// Viewport returns the current output size.
func (r *Renderer) Viewport() camera.Size { return r.viewport }

// StartCarAnimation puts the car on the start line and starts it.
func (r *Renderer) StartCarAnimation() bool {
	if r.disposed {
		return false
	}
	return r.car.Start()
}

// StopCarAnimation freezes the car.
func (r *Renderer) StopCarAnimation() {
	r.car.Stop()
}

// ToggleCar starts a stopped car and stops a running one.
func (r *Renderer) ToggleCar() bool {
	if r.car.Active {
		r.StopCarAnimation()
		return false
	}
	return r.StartCarAnimation()
}

// OnCameraUpdate registers fn to be called after every tick.
func (r *Renderer) OnCameraUpdate(fn CameraObserver) {
	if r.disposed || fn == nil {
		return
	}
	r.observers = append(r.observers, fn)
}

// Dispose releases the geometry and observers. Every later call is a no-op.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.car.Stop()
	r.disposed = true
	r.observers = nil
	r.geom = nil
	r.active = nil
}

// Disposed reports whether Dispose was called.
func (r *Renderer) Disposed() bool { return r.disposed }

// Tick advances the scene by one nominal tick.
func (r *Renderer) Tick() {
	if !r.Ready() {
		return
	}
	r.cam.Advance()
	r.car.Advance(r.opts.CarSpeed)
	r.notify()
}

// Update advances the scene by the elapsed wall time. Camera smoothing and
// car speed are scaled so the result does not depend on the call rate.
func (r *Renderer) Update(elapsed time.Duration) {
	if !r.Ready() || elapsed <= 0 {
		return
	}
	r.cam.AdvanceBy(elapsed)
	r.car.Advance(r.opts.CarSpeed * elapsed.Seconds() * r.opts.TickRate)
	r.notify()
}

func (r *Renderer) notify() {
	st := r.cam.State()
	for _, fn := range r.observers {
		fn(st)
	}
}

// Draw paints the current state onto c without advancing it.
func (r *Renderer) Draw(c Canvas) {
	c.Clear()
	if !r.Ready() {
		return
	}
	view := r.cam.View()
	c.SetTransform(view)

	for i := range r.geom.Sectors {
		s := &r.geom.Sectors[i]
		c.StrokePolyline(s.Points, Stroke{Color: sectorColor(s), Width: SectorWidth, Glow: SectorGlow})
	}
	if r.active != nil {
		c.StrokePolyline(r.active.Points, Stroke{
			Color: sectorColor(r.active),
			Width: ActiveSectorWidth,
			Glow:  ActiveSectorGlow,
		})
	}
	if r.car.Active {
		m := r.car.Marker(physics.MarkerSize / view.Scale)
		c.FillPolygon(m[:], CarColor, CarGlow)
	}
	c.ResetTransform()
}

// RenderFrame runs one tick and draws the result.
func (r *Renderer) RenderFrame(c Canvas) {
	r.Tick()
	r.Draw(c)
}

// Camera returns the camera state.
func (r *Renderer) Camera() camera.State { return r.cam.State() }

// Car returns the car state.
func (r *Renderer) Car() physics.State { return r.car.State() }

// Geometry returns the loaded geometry, or nil.
func (r *Renderer) Geometry() *track.Geometry { return r.geom }

// ActiveSector returns the highlighted sector, or nil.
func (r *Renderer) ActiveSector() *track.Sector { return r.active }

// SectorIDs lists the sector ids in traversal order.
func (r *Renderer) SectorIDs() []string {
	if r.geom == nil {
		return nil
	}
	return lo.Map(r.geom.Sectors, func(s track.Sector, _ int) string { return s.ID })
}

// Anchor resolves a lap fraction to a track-local point, the same way the
// car is positioned.
func (r *Renderer) Anchor(lapFraction float64) (common.Vec2, bool) {
	if !r.Ready() {
		return common.Vec2{}, false
	}
	return r.geom.Points.At(lapFraction)
}

// SectorAt returns the sector whose polyline passes within PickRadius pixels
// of the screen point.
func (r *Renderer) SectorAt(screen common.Vec2) (*track.Sector, bool) {
	if !r.Ready() {
		return nil, false
	}
	view := r.cam.View()
	p, idx := r.geom.Points.Closest(view.ToTrack(screen))
	if idx < 0 || view.ToScreen(p).Dist(screen) > PickRadius {
		return nil, false
	}
	return r.geom.SectorAtIndex(idx)
}
