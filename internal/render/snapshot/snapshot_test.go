package snapshot

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"apex-sim/internal/common"
	"apex-sim/internal/log"
	"apex-sim/internal/scene"
)

func newRenderer(t *testing.T) *scene.Renderer {
	t.Helper()
	opts := scene.DefaultOptions()
	r := scene.NewRenderer(opts, log.FromZap(zaptest.NewLogger(t)))
	require.True(t, r.LoadTrack("M0,0 L100,0 L100,100 L0,100 Z", nil))
	r.SetViewportSize(320, 240)
	return r
}

func TestRenderPNG(t *testing.T) {
	r := newRenderer(t)
	require.True(t, r.StartCarAnimation())
	r.Tick()

	c := Render(r)
	require.NoError(t, c.Err())
	require.NoError(t, c.AddLabels([]common.Vec2{{X: 10, Y: 10}}, []string{"1"}))

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.InDelta(t, 320, img.Bounds().Dx(), 1)
	assert.InDelta(t, 240, img.Bounds().Dy(), 1)
}

func TestSave(t *testing.T) {
	c := Render(newRenderer(t))
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, c.Save(path))
	assert.FileExists(t, path)
}

func TestAddLabelsMismatch(t *testing.T) {
	c := New(100, 100)
	assert.Error(t, c.AddLabels([]common.Vec2{{}}, nil))
	assert.NoError(t, c.AddLabels(nil, nil))
}
