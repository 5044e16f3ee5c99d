package assets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"apex-sim/internal/log"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCacheExpiration(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	loads := 0
	c := NewCache(
		WithExpiration[string, int](time.Minute),
		WithClock[string, int](clock.now),
		WithLoader[string, int](func(_ context.Context, key string) (int, error) {
			loads++
			return len(key) + loads, nil
		}),
	)
	ctx := context.Background()

	v, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	clock.advance(59 * time.Second)
	v, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 4, v, "served from cache")

	clock.advance(time.Second)
	v, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 5, v, "reloaded after expiry")
	assert.Equal(t, 2, loads)
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fail := true
	c := NewCache(
		WithLogger[string, string](log.FromZap(zap.New(core))),
		WithLoader[string, string](func(context.Context, string) (string, error) {
			if fail {
				return "", errors.New("boom")
			}
			return "ok", nil
		}),
	)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.Zero(t, c.Len())
	assert.Equal(t, 1, logs.FilterMessage("error loading entry").Len())

	fail = false
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, c.Len())

	c.Invalidate(ctx, "k")
	assert.Zero(t, c.Len())
}

func TestCacheWithoutLoader(t *testing.T) {
	c := NewCache[string, int]()
	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
