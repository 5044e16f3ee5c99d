package scene

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"apex-sim/internal/camera"
	"apex-sim/internal/common"
	"apex-sim/internal/log"
	"apex-sim/internal/track"
)

const square = "M0,0 L100,0 L100,100 L0,100 Z"

var squareDefs = []track.SectorDef{
	{ID: "s1", Color: "#FF1E46", Label: "SECTOR 1"},
	{ID: "s2", Color: "#FFD700", Label: "SECTOR 2"},
	{ID: "s3", Color: "#00FF88", Label: "SECTOR 3"},
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(DefaultOptions(), log.FromZap(zaptest.NewLogger(t)))
}

func loadedRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := newTestRenderer(t)
	require.True(t, r.LoadTrack(square, squareDefs))
	return r
}

func TestZoomToSectorEndToEnd(t *testing.T) {
	r := loadedRenderer(t)
	g := r.Geometry()
	require.GreaterOrEqual(t, len(g.Points), 4)
	require.Len(t, g.Sectors, 3)

	s2, ok := g.Sector("s2")
	require.True(t, ok)
	independent := track.Bounds(s2.Points)
	if diff := cmp.Diff(independent, s2.Bounds); diff != "" {
		t.Fatalf("sector bounds mismatch (-want +got):\n%s", diff)
	}

	require.True(t, r.SelectSector("s2"))
	assert.Equal(t, "s2", r.ActiveSector().ID)

	want, ok := camera.Frame(independent, r.Viewport(), camera.DefaultZoomPadding, camera.ZoomHeadroom)
	require.True(t, ok)
	for range 90 {
		r.Tick()
	}
	if diff := cmp.Diff(want, r.cam.Target(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("camera target mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTrackFitsView(t *testing.T) {
	r := loadedRenderer(t)
	want, ok := camera.Frame(r.Geometry().Bounds, r.Viewport(), camera.DefaultFitPadding, camera.FitHeadroom)
	require.True(t, ok)

	st := r.Camera()
	assert.Equal(t, want, st.View())
	assert.Equal(t, want.Scale, st.TargetScale)
	assert.Equal(t, []string{"s1", "s2", "s3"}, r.SectorIDs())
}

func TestLoadUnusableTrack(t *testing.T) {
	r := newTestRenderer(t)
	assert.False(t, r.LoadTrack("garbage", nil))
	assert.False(t, r.Ready())

	// every control call is a no-op without geometry
	assert.False(t, r.SelectSector("sector1"))
	assert.False(t, r.SelectSector(""))
	assert.False(t, r.StartCarAnimation())
	r.SetViewportSize(640, 480)
	r.Tick()
	_, ok := r.Anchor(0.5)
	assert.False(t, ok)

	var rec Recorder
	r.Draw(&rec)
	assert.Equal(t, []string{OpClear}, rec.Ops())
}

func TestSelectUnknownSector(t *testing.T) {
	r := loadedRenderer(t)
	before := r.Camera()
	assert.False(t, r.SelectSector("nope"))
	assert.Nil(t, r.ActiveSector())
	assert.Equal(t, before, r.Camera())
}

func TestResetZoomClearsActiveSector(t *testing.T) {
	r := loadedRenderer(t)
	fit := r.cam.Target()
	require.True(t, r.SelectSector("s1"))
	r.Tick()

	require.True(t, r.SelectSector(""))
	assert.Nil(t, r.ActiveSector())
	for range 300 {
		r.Tick()
	}
	assert.InDelta(t, fit.Scale, r.Camera().Scale, 1e-6)
	assert.InDelta(t, fit.X, r.Camera().X, 1e-6)
}

func TestDrawOrder(t *testing.T) {
	r := loadedRenderer(t)
	var rec Recorder

	r.Draw(&rec)
	assert.Equal(t, []string{OpClear, OpTransform, OpStroke, OpStroke, OpStroke, OpReset}, rec.Ops())
	assert.Equal(t, "#FF1E46", rec.Commands[2].Color)
	assert.Equal(t, SectorWidth, rec.Commands[2].Width)

	require.True(t, r.SelectSector("s3"))
	require.True(t, r.StartCarAnimation())
	r.RenderFrame(&rec)
	assert.Equal(t,
		[]string{OpClear, OpTransform, OpStroke, OpStroke, OpStroke, OpStroke, OpFill, OpReset},
		rec.Ops())
	active := rec.Commands[5]
	assert.Equal(t, "#00FF88", active.Color)
	assert.Equal(t, ActiveSectorWidth, active.Width)
	assert.Equal(t, ActiveSectorGlow, active.Glow)

	car := rec.Commands[6]
	assert.Equal(t, "#00E5FF", car.Color)
	assert.Len(t, car.Points, 3)

	data, err := rec.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"fill"`)
}

func TestCarStopsWhereItIs(t *testing.T) {
	r := loadedRenderer(t)
	require.True(t, r.StartCarAnimation())
	for range 200 {
		r.Tick()
	}
	r.StopCarAnimation()
	frozen := r.Car()
	assert.InDelta(t, 0.2, frozen.Progress, 1e-9)
	for range 50 {
		r.Tick()
	}
	assert.Equal(t, frozen, r.Car())

	var rec Recorder
	r.Draw(&rec)
	assert.NotContains(t, rec.Ops(), OpFill)

	assert.True(t, r.ToggleCar())
	assert.Equal(t, 0.0, r.Car().Progress)
	assert.False(t, r.ToggleCar())
}

func TestCameraObserver(t *testing.T) {
	r := loadedRenderer(t)
	var states []camera.State
	r.OnCameraUpdate(func(s camera.State) { states = append(states, s) })

	r.Tick()
	r.Tick()
	require.Len(t, states, 2)

	corner := states[1].ToScreen(common.Vec2{X: 100, Y: 100})
	assert.Equal(t, r.Camera().ToScreen(common.Vec2{X: 100, Y: 100}), corner)
}

func TestSetViewportSizeRefits(t *testing.T) {
	r := loadedRenderer(t)
	r.SetViewportSize(800, 600)
	want, ok := camera.Frame(r.Geometry().Bounds, camera.Size{Width: 800, Height: 600},
		camera.DefaultFitPadding, camera.FitHeadroom)
	require.True(t, ok)
	assert.Equal(t, want, r.Camera().View())

	r.SetViewportSize(0, 600)
	assert.Equal(t, camera.Size{Width: 800, Height: 600}, r.Viewport())
}

func TestAnchorAndSectorAt(t *testing.T) {
	r := loadedRenderer(t)
	g := r.Geometry()

	p, ok := r.Anchor(0)
	require.True(t, ok)
	assert.Equal(t, g.Points[0], p)

	view := r.Camera().View()
	// Middle of the bottom edge (y=100) belongs to the third sector.
	s, ok := r.SectorAt(view.ToScreen(common.Vec2{X: 50, Y: 100}))
	require.True(t, ok)
	assert.Equal(t, "s3", s.ID)

	_, ok = r.SectorAt(view.ToScreen(common.Vec2{X: 50, Y: 50}))
	assert.False(t, ok)
}

func TestDispose(t *testing.T) {
	r := loadedRenderer(t)
	calls := 0
	r.OnCameraUpdate(func(camera.State) { calls++ })
	r.Dispose()
	r.Dispose()

	assert.True(t, r.Disposed())
	assert.False(t, r.Ready())
	assert.False(t, r.SelectSector("s1"))
	assert.False(t, r.StartCarAnimation())
	assert.False(t, r.LoadTrack(square, nil))
	r.Tick()
	assert.Zero(t, calls)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "#FF1E46", want: "#FF1E46"},
		{in: "#fff", want: "#FFFFFF"},
		{in: "00E5FF80", want: "#00E5FF80"},
		{in: "#12345", wantErr: true},
		{in: "#GGGGGG", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, HexColor(c))
		})
	}
}

func TestToggleSector(t *testing.T) {
	r := loadedRenderer(t)
	fit := r.cam.Target()

	require.True(t, r.ToggleSector("s2"))
	require.True(t, r.StartCarAnimation())
	r.Tick()
	assert.Equal(t, "s2", r.ActiveSector().ID)

	require.True(t, r.ToggleSector("s2"))
	assert.Nil(t, r.ActiveSector())
	assert.False(t, r.Car().Active)
	for range 300 {
		r.Tick()
	}
	assert.InDelta(t, fit.Scale, r.Camera().Scale, 1e-6)

	require.True(t, r.ToggleSector("s1"))
	require.True(t, r.ToggleSector("s3"))
	assert.Equal(t, "s3", r.ActiveSector().ID)
}

func TestRendererEasing(t *testing.T) {
	progress := func(easing string) float64 {
		opts := DefaultOptions()
		opts.Easing = easing
		opts.ZoomDuration = time.Second
		r := NewRenderer(opts, log.FromZap(zaptest.NewLogger(t)))
		require.True(t, r.LoadTrack(square, squareDefs))
		from := r.cam.Target()
		require.True(t, r.SelectSector("s2"))
		s2, _ := r.Geometry().Sector("s2")
		to, ok := camera.Frame(s2.Bounds, r.Viewport(), opts.ZoomPadding, camera.ZoomHeadroom)
		require.True(t, ok)
		for range 15 {
			r.Tick()
		}
		return (r.cam.Target().Scale - from.Scale) / (to.Scale - from.Scale)
	}
	assert.InDelta(t, 0.0625, progress("inOutCubic"), 1e-6)
	assert.InDelta(t, 0.25, progress("linear"), 1e-6)
	assert.InDelta(t, 0.0625, progress("wobble"), 1e-6)
}
