package assets

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"apex-sim/internal/catalog"
	"apex-sim/internal/log"
	"apex-sim/internal/track"
)

type countingSource struct {
	Source
	calls atomic.Int32
}

func (s *countingSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	s.calls.Add(1)
	return s.Source.Fetch(ctx, key)
}

func newStore(t *testing.T) (*PathStore, *countingSource) {
	t.Helper()
	src := &countingSource{Source: FSSource{FS: catalog.Assets, Dir: catalog.AssetDir}}
	return NewPathStore(catalog.Default(), src, time.Minute, log.FromZap(zaptest.NewLogger(t))), src
}

func TestPathStore(t *testing.T) {
	s, src := newStore(t)
	ctx := context.Background()

	d, err := s.PathData(ctx, "monza")
	require.NoError(t, err)
	assert.False(t, track.Build(d, track.DefaultOptions()).Empty())

	e, err := s.Get(ctx, "monza")
	require.NoError(t, err)
	assert.Equal(t, d, e.PathData)
	assert.InDelta(t, 516.66, e.ViewBox.Width, 1e-9)
	assert.Equal(t, int32(1), src.calls.Load())

	s.Invalidate(ctx, "monza")
	_, err = s.PathData(ctx, "monza")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestPathStoreErrors(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.PathData(context.Background(), "imola")
	assert.ErrorIs(t, err, catalog.ErrUnknownTrack)

	cat, err := catalog.Load(strings.NewReader("tracks:\n  - {id: blank, svgPath: blank.svg}\n"))
	require.NoError(t, err)
	blank := NewPathStore(cat, staticSource{data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect/></svg>`)},
		0, log.FromZap(zaptest.NewLogger(t)))
	_, err = blank.PathData(context.Background(), "blank")
	assert.ErrorIs(t, err, track.ErrNoPath)
}
