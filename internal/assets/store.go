package assets

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"apex-sim/internal/catalog"
	"apex-sim/internal/log"
	"apex-sim/internal/track"
)

// Entry is the path data extracted from a track's SVG asset.
type Entry struct {
	PathData string
	ViewBox  track.ViewBox
}

// PathStore resolves track ids to path data through the catalog, a Source
// and a TTL cache.
type PathStore struct {
	catalog *catalog.Catalog
	source  Source
	cache   *Cache[string, Entry]
	log     *log.Logger
}

// NewPathStore creates a store. A ttl <= 0 uses the cache default.
func NewPathStore(cat *catalog.Catalog, src Source, ttl time.Duration, l *log.Logger) *PathStore {
	if l == nil {
		l = log.Default().Named("assets")
	}
	s := &PathStore{catalog: cat, source: src, log: l}
	opts := []Option[string, Entry]{
		WithLoader[string, Entry](s.load),
		WithLogger[string, Entry](l.Named("cache")),
	}
	if ttl > 0 {
		opts = append(opts, WithExpiration[string, Entry](ttl))
	}
	s.cache = NewCache(opts...)
	return s
}

func (s *PathStore) load(ctx context.Context, trackID string) (Entry, error) {
	t, err := s.catalog.Get(trackID)
	if err != nil {
		return Entry{}, err
	}
	data, err := s.source.Fetch(ctx, t.SVGPath)
	if err != nil {
		return Entry{}, fmt.Errorf("track %s: %w", trackID, err)
	}
	d, vb, err := track.ExtractPathData(bytes.NewReader(data))
	if err != nil {
		return Entry{}, fmt.Errorf("track %s: %w", trackID, err)
	}
	s.log.Info("path data loaded",
		log.String("track", trackID),
		log.String("asset", t.SVGPath),
		log.Int("bytes", len(data)))
	return Entry{PathData: d, ViewBox: vb}, nil
}

// Get returns the cached or freshly loaded entry for a track.
func (s *PathStore) Get(ctx context.Context, trackID string) (Entry, error) {
	return s.cache.Get(ctx, trackID)
}

// PathData returns the path description of a track.
func (s *PathStore) PathData(ctx context.Context, trackID string) (string, error) {
	e, err := s.Get(ctx, trackID)
	if err != nil {
		return "", err
	}
	return e.PathData, nil
}

// Invalidate forces the next lookup of trackID to refetch.
func (s *PathStore) Invalidate(ctx context.Context, trackID string) {
	s.cache.Invalidate(ctx, trackID)
}
