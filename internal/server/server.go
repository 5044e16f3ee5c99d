// Package server exposes the track catalog over HTTP and streams live
// scenes to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"apex-sim/internal/assets"
	"apex-sim/internal/catalog"
	"apex-sim/internal/log"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

// PathSource resolves a track id to its path data.
type PathSource interface {
	Get(ctx context.Context, trackID string) (assets.Entry, error)
	Invalidate(ctx context.Context, trackID string)
}

// Options configures the server.
type Options struct {
	Render         scene.Options
	FPS            int
	OriginPatterns []string
}

type Server struct {
	catalog *catalog.Catalog
	paths   PathSource
	opts    Options
	log     *log.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	closed   bool
	sessions sync.WaitGroup
}

func New(cat *catalog.Catalog, paths PathSource, opts Options, l *log.Logger) *Server {
	if l == nil {
		l = log.Default().Named("server")
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{catalog: cat, paths: paths, opts: opts, log: l, ctx: ctx, cancel: cancel}
}

// Router returns the HTTP handler.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/tracks", s.listTracks).Methods(http.MethodGet)
	r.HandleFunc("/tracks/{trackId}", s.getTrack).Methods(http.MethodGet)
	r.HandleFunc("/tracks/{trackId}/cache", s.invalidateTrack).Methods(http.MethodDelete)
	r.HandleFunc("/tracks/{trackId}/ws", s.handleWebSocket)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Duration("took", time.Since(start)))
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and closes all live sessions.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", log.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close ends all websocket sessions and waits for them to finish.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.sessions.Wait()
}

// acquire registers a new session unless the server is closing.
func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions.Add(1)
	return true
}

type trackSummary struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Country string        `json:"country"`
	Stats   catalog.Stats `json:"stats"`
}

func summarize(t catalog.Track) trackSummary {
	return trackSummary{ID: t.ID, Name: t.Name, Country: t.Country, Stats: t.Stats}
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lo.Map(s.catalog.Tracks, func(t catalog.Track, _ int) trackSummary {
		return summarize(t)
	}))
}

type sectorInfo struct {
	ID         string             `json:"id"`
	Label      string             `json:"label"`
	Color      string             `json:"color"`
	Bounds     *track.BoundingBox `json:"bounds"`
	StartIndex int                `json:"startIndex"`
	EndIndex   int                `json:"endIndex"`
	Corners    []catalog.Corner   `json:"corners,omitempty"`
}

type trackDetail struct {
	catalog.Track
	Points int                `json:"points"`
	Bounds *track.BoundingBox `json:"bounds"`
	Length float64            `json:"length"`
	Geom   []sectorInfo       `json:"geometry"`
}

func sectorInfos(t *catalog.Track, g *track.Geometry) []sectorInfo {
	return lo.Map(g.Sectors, func(sec track.Sector, _ int) sectorInfo {
		return sectorInfo{
			ID:         sec.ID,
			Label:      sec.Label,
			Color:      sec.Color,
			Bounds:     sec.Bounds,
			StartIndex: sec.StartIndex,
			EndIndex:   sec.EndIndex,
			Corners:    t.SectorCorners(sec.ID),
		}
	})
}

// loadGeometry resolves a track and builds its geometry.
func (s *Server) loadGeometry(ctx context.Context, id string) (*catalog.Track, *track.Geometry, error) {
	t, err := s.catalog.Get(id)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.paths.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return t, track.Build(e.PathData, t.Options(s.opts.Render.Track)), nil
}

func (s *Server) getTrack(w http.ResponseWriter, r *http.Request) {
	t, g, err := s.loadGeometry(r.Context(), mux.Vars(r)["trackId"])
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trackDetail{
		Track:  *t,
		Points: len(g.Points),
		Bounds: g.Bounds,
		Length: g.Points.Length(),
		Geom:   sectorInfos(t, g),
	})
}

// invalidateTrack drops the cached path data so the next request refetches
// the asset.
func (s *Server) invalidateTrack(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["trackId"]
	if _, err := s.catalog.Get(id); err != nil {
		s.handleError(w, err)
		return
	}
	s.paths.Invalidate(r.Context(), id)
	s.log.Info("path cache invalidated", log.String("track", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownTrack), errors.Is(err, assets.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, track.ErrNoPath):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", log.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
