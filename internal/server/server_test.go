package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"apex-sim/internal/assets"
	"apex-sim/internal/catalog"
	"apex-sim/internal/log"
	"apex-sim/internal/scene"
	"apex-sim/internal/track"
)

func newTestServer(t *testing.T) *httptest.Server {
	_, srv := newServerPair(t)
	return srv
}

func newServerPair(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	l := log.FromZap(zaptest.NewLogger(t))
	cat := catalog.Default()
	store := assets.NewPathStore(cat, assets.FSSource{FS: catalog.Assets, Dir: catalog.AssetDir}, time.Minute, l)
	s := New(cat, store, Options{Render: scene.DefaultOptions(), FPS: 30}, l)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})
	return s, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListTracks(t *testing.T) {
	srv := newTestServer(t)
	var tracks []trackSummary
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tracks", &tracks))
	require.Len(t, tracks, 2)
	assert.Equal(t, "monza", tracks[0].ID)
	assert.Equal(t, "GBR", tracks[1].Country)
}

func TestGetTrack(t *testing.T) {
	srv := newTestServer(t)

	var detail struct {
		ID       string             `json:"id"`
		Points   int                `json:"points"`
		Bounds   *track.BoundingBox `json:"bounds"`
		Geometry []sectorInfo       `json:"geometry"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tracks/silverstone", &detail))
	assert.Equal(t, "silverstone", detail.ID)
	assert.Positive(t, detail.Points)
	require.NotNil(t, detail.Bounds)
	require.Len(t, detail.Geometry, 3)
	assert.Equal(t, detail.Points, detail.Geometry[2].EndIndex)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/tracks/imola", &errBody))
	assert.Contains(t, errBody["error"], "unknown track")
}

func readUntil(ctx context.Context, t *testing.T, c *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	for {
		var msg ServerMessage
		require.NoError(t, wsjson.Read(ctx, c, &msg))
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tracks/monza/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.CloseNow()
	c.SetReadLimit(1 << 22)

	hello := readUntil(ctx, t, c, func(m ServerMessage) bool { return m.Type == MsgHello })
	assert.NotEmpty(t, hello.Session)
	require.NotNil(t, hello.Track)
	assert.Equal(t, "monza", hello.Track.ID)
	require.Len(t, hello.Sectors, 3)
	require.Len(t, hello.Sectors[0].Corners, 5)
	assert.Equal(t, "01", hello.Sectors[0].Corners[0].Number)

	frame := readUntil(ctx, t, c, func(m ServerMessage) bool { return m.Type == MsgFrame })
	require.NotEmpty(t, frame.Commands)
	assert.Equal(t, scene.OpClear, frame.Commands[0].Op)

	require.NoError(t, wsjson.Write(ctx, c, ClientMessage{Type: MsgSelectSector, Sector: "sector2"}))
	require.NoError(t, wsjson.Write(ctx, c, ClientMessage{Type: MsgStartCar}))

	cam := readUntil(ctx, t, c, func(m ServerMessage) bool {
		return m.Type == MsgCamera && m.Active == "sector2" && m.Car != nil && m.Car.Active
	})
	require.NotNil(t, cam.Camera)
	assert.Positive(t, cam.Camera.Scale)
	assert.NotEmpty(t, cam.Markers)

	require.NoError(t, wsjson.Write(ctx, c, ClientMessage{Type: MsgSelectSector}))
	readUntil(ctx, t, c, func(m ServerMessage) bool { return m.Type == MsgCamera && m.Active == "" })

	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocketUnknownTrack(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/tracks/imola/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketRefusedWhileClosing(t *testing.T) {
	s, srv := newServerPair(t)
	s.Close()

	resp, err := http.Get(srv.URL + "/tracks/monza/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

type countingSource struct {
	assets.Source
	calls atomic.Int32
}

func (c *countingSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	c.calls.Add(1)
	return c.Source.Fetch(ctx, key)
}

func TestInvalidateTrackCache(t *testing.T) {
	l := log.FromZap(zaptest.NewLogger(t))
	cat := catalog.Default()
	src := &countingSource{Source: assets.FSSource{FS: catalog.Assets, Dir: catalog.AssetDir}}
	s := New(cat, assets.NewPathStore(cat, src, time.Minute, l), Options{Render: scene.DefaultOptions()}, l)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})

	del := func(id string) int {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/tracks/"+id+"/cache", http.NoBody)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	var detail map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tracks/monza", &detail))
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tracks/monza", &detail))
	assert.Equal(t, int32(1), src.calls.Load())

	assert.Equal(t, http.StatusNoContent, del("monza"))
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tracks/monza", &detail))
	assert.Equal(t, int32(2), src.calls.Load())

	assert.Equal(t, http.StatusNotFound, del("imola"))
}
