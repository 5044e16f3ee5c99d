package assets

import (
	"context"
	"errors"
	"sync"
	"time"

	"apex-sim/internal/log"
)

var ErrCacheMiss = errors.New("cache miss")

type (
	Option[K comparable, V any]     func(*config[K, V])
	LoaderFunc[K comparable, V any] func(context.Context, K) (V, error)
	item[T any]                     struct {
		data    T
		expires time.Time
	}
	config[K comparable, V any] struct {
		expiration time.Duration
		loader     LoaderFunc[K, V]
		now        func() time.Time
		l          *log.Logger
	}
)

// Cache is a loader-backed cache with per-entry expiration. Failed loads are
// not cached.
type Cache[K comparable, V any] struct {
	mutex  sync.Mutex
	items  map[K]item[V]
	config *config[K, V]
}

func WithExpiration[K comparable, V any](expiration time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.expiration = expiration
	}
}

func WithLoader[K comparable, V any](lf LoaderFunc[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = lf
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.l = arg
	}
}

func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *config[K, V]) {
		c.now = now
	}
}

func NewCache[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &config[K, V]{
		expiration: 5 * time.Minute,
		now:        time.Now,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Cache[K, V]{
		items:  make(map[K]item[V]),
		config: c,
	}
}

// Get returns the cached value for key, loading it when missing or expired.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if cacheItem, ok := c.items[key]; ok {
		if !cacheItem.expires.After(c.config.now()) {
			delete(c.items, key)
			return c.load(ctx, key)
		}
		return cacheItem.data, nil
	}
	return c.load(ctx, key)
}

func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	var zero V
	if c.config.loader == nil {
		return zero, ErrCacheMiss
	}
	v, err := c.config.loader(ctx, key)
	c.config.l.Debug("cache.load", log.Any("key", key))
	if err != nil {
		c.config.l.Error("error loading entry", log.Any("key", key), log.ErrorField(err))
		return zero, err
	}
	c.items[key] = item[V]{data: v, expires: c.config.now().Add(c.config.expiration)}
	return v, nil
}

// Invalidate drops key so the next Get reloads it.
func (c *Cache[K, V]) Invalidate(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
	c.config.l.Debug("Invalidate", log.Any("key", key), log.Int("remain items", len(c.items)))
}

// Len returns the number of cached entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
