package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"apex-sim/internal/camera"
	"apex-sim/internal/catalog"
	"apex-sim/internal/common"
	"apex-sim/internal/log"
	"apex-sim/internal/physics"
	"apex-sim/internal/scene"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Client message types.
const (
	MsgSelectSector = "selectSector"
	MsgResize       = "resize"
	MsgStartCar     = "startCar"
	MsgStopCar      = "stopCar"
)

// Server message types.
const (
	MsgHello  = "hello"
	MsgCamera = "camera"
	MsgFrame  = "frame"
)

// ClientMessage is sent by websocket clients to control their scene.
type ClientMessage struct {
	Type   string  `json:"type"`
	Sector string  `json:"sector,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Marker is an overlay position mapped to screen coordinates.
type Marker struct {
	Label string  `json:"label"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ServerMessage is pushed to websocket clients.
type ServerMessage struct {
	Type     string              `json:"type"`
	Session  string              `json:"session,omitempty"`
	Track    *trackSummary       `json:"track,omitempty"`
	Sectors  []sectorInfo        `json:"sectors,omitempty"`
	Camera   *camera.State       `json:"camera,omitempty"`
	Car      *physics.State      `json:"car,omitempty"`
	Active   string              `json:"active,omitempty"`
	Markers  []Marker            `json:"markers,omitempty"`
	Commands []scene.DrawCommand `json:"commands,omitempty"`
}

type anchor struct {
	label, kind string
	p           common.Vec2
}

// session is one websocket client driving its own renderer.
type session struct {
	id      string
	conn    *websocket.Conn
	loop    *scene.Loop
	send    chan []byte
	anchors []anchor
	rec     scene.Recorder
	log     *log.Logger
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	t, g, err := s.loadGeometry(r.Context(), mux.Vars(r)["trackId"])
	if err != nil {
		s.handleError(w, err)
		return
	}

	if !s.acquire() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server closing"})
		return
	}
	defer s.sessions.Done()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.OriginPatterns,
	})
	if err != nil {
		s.log.Error("websocket accept", log.ErrorField(err))
		return
	}

	id := uuid.New().String()
	l := s.log.Named("session").With(log.String("session", id), log.String("track", t.ID))
	renderer := scene.NewRenderer(s.opts.Render, l.Named("scene"))
	renderer.SetGeometry(g)

	sess := &session{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  l,
	}
	sess.anchors = anchorsFor(t, renderer)
	renderer.OnCameraUpdate(func(st camera.State) { sess.pushCamera(renderer, st) })
	sess.loop = scene.NewLoop(renderer, s.opts.FPS,
		scene.WithLoopLogger(l.Named("loop")),
		scene.WithFrameFunc(sess.pushFrame))

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	summary := summarize(*t)
	sess.push(ServerMessage{Type: MsgHello, Session: id, Track: &summary, Sectors: sectorInfos(t, g)})
	l.Info("session started")

	go func() {
		_ = sess.loop.Run(ctx)
	}()
	go sess.writePump(ctx)
	sess.readPump(ctx)
	cancel()
	<-sess.loop.Done()
	l.Info("session ended")
}

func anchorsFor(t *catalog.Track, r *scene.Renderer) []anchor {
	var out []anchor
	add := func(label, kind string, at float64) {
		if p, ok := r.Anchor(at); ok {
			out = append(out, anchor{label: label, kind: kind, p: p})
		}
	}
	for _, c := range t.Corners {
		add(c.Number, "corner", c.At)
	}
	for _, z := range t.DRSZones {
		add(z.ID, "drsDetection", z.Detection)
		add(z.ID, "drsActivation", z.Activation)
	}
	if t.SpeedTrap != nil {
		add(t.SpeedTrap.Label, "speedTrap", t.SpeedTrap.At)
	}
	return out
}

func (c *session) readPump(ctx context.Context) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")
	c.conn.SetReadLimit(maxMsgSize)

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			c.log.Debug("read error", log.ErrorField(err))
			return
		}
		c.handle(msg)
	}
}

// handle stages a control message on the loop goroutine.
func (c *session) handle(msg ClientMessage) {
	var fn func(*scene.Renderer)
	switch msg.Type {
	case MsgSelectSector:
		fn = func(r *scene.Renderer) {
			if !r.SelectSector(msg.Sector) {
				c.log.Debug("sector not selected", log.String("sector", msg.Sector))
			}
		}
	case MsgResize:
		fn = func(r *scene.Renderer) { r.SetViewportSize(msg.Width, msg.Height) }
	case MsgStartCar:
		fn = func(r *scene.Renderer) { r.StartCarAnimation() }
	case MsgStopCar:
		fn = func(r *scene.Renderer) { r.StopCarAnimation() }
	default:
		c.log.Warn("invalid message", log.String("type", msg.Type))
		return
	}
	c.loop.Post(fn)
}

func (c *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Debug("write error", log.ErrorField(err))
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// push queues a message, dropping it when the client is too slow.
func (c *session) push(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal message", log.ErrorField(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping message", log.String("type", msg.Type))
	}
}

func (c *session) pushCamera(r *scene.Renderer, st camera.State) {
	car := r.Car()
	msg := ServerMessage{Type: MsgCamera, Camera: &st, Car: &car}
	if s := r.ActiveSector(); s != nil {
		msg.Active = s.ID
	}
	msg.Markers = make([]Marker, len(c.anchors))
	for i, a := range c.anchors {
		p := st.ToScreen(a.p)
		msg.Markers[i] = Marker{Label: a.label, Kind: a.kind, X: p.X, Y: p.Y}
	}
	c.push(msg)
}

func (c *session) pushFrame(r *scene.Renderer) {
	r.Draw(&c.rec)
	c.push(ServerMessage{Type: MsgFrame, Commands: c.rec.Commands})
}
