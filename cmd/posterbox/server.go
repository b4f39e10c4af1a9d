package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/posterbox-dev/posterbox/pkg/hostbridge"
	"github.com/posterbox-dev/posterbox/pkg/poster"
	"github.com/posterbox-dev/posterbox/pkg/render"
	"github.com/posterbox-dev/posterbox/pkg/store"
)

// demoServer hosts the widget demo page, the image store endpoints and the
// live WebSocket channel. Each WebSocket connection owns one widget
// instance; host events arrive as JSON frames and re-renders are pushed
// back as HTML.
type demoServer struct {
	store    *store.DiskStore
	registry *hostbridge.Registry
	maxBytes int64
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*liveSession]struct{}
	closed   bool
}

func newDemoServer(st *store.DiskStore, maxBytes int64) *demoServer {
	logger := slog.Default().With("component", "server")
	registry := hostbridge.NewRegistry()
	registry.SetLogger(slog.Default())

	return &demoServer{
		store:    st,
		registry: registry,
		maxBytes: maxBytes,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		sessions: make(map[*liveSession]struct{}),
	}
}

func (s *demoServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)

	r.Method(http.MethodPost, "/image", store.SaveHandler(s.store, s.maxBytes))
	r.Method(http.MethodPost, "/image/url", store.SaveFromURLHandler(s.store))
	r.Method(http.MethodGet, "/image/{id}", store.ServeHandler(s.store))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// hostEvent is an inbound frame from the page. Which fields are set depends
// on the type.
type hostEvent struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`     // base64 file payload
	Filename string `json:"filename,omitempty"` // payload filename
	Value    string `json:"value,omitempty"`    // URL field text
}

// renderFrame is the outbound frame carrying fresh widget markup.
type renderFrame struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	HTML     string `json:"html"`
}

type liveSession struct {
	conn   *websocket.Conn
	widget *poster.Widget
	logger *slog.Logger

	// dirty coalesces re-render requests; the writer drains it.
	dirty chan struct{}
	done  chan struct{}

	writeMu sync.Mutex
}

func (s *demoServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := &liveSession{
		conn:   conn,
		logger: s.logger,
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	sess.widget = poster.New(s.store,
		poster.WithRegistry(s.registry),
		poster.WithMaxBytes(s.maxBytes),
		poster.WithLogger(slog.Default()),
		poster.WithRenderNotify(sess.markDirty),
	)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		sess.widget.Dispose()
		return
	}
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("session started", "instance", sess.widget.InstanceID())

	go sess.writeLoop()
	sess.markDirty() // initial paint

	sess.readLoop(s)

	close(sess.done)
	sess.widget.Dispose()
	conn.Close()

	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()

	s.logger.Info("session ended", "instance", sess.widget.InstanceID())
}

func (sess *liveSession) markDirty() {
	select {
	case sess.dirty <- struct{}{}:
	default:
	}
}

// writeLoop pushes a render frame whenever the widget marks itself dirty.
func (sess *liveSession) writeLoop() {
	for {
		select {
		case <-sess.done:
			return
		case <-sess.dirty:
		}

		var r render.Renderer
		html, err := r.RenderToString(sess.widget.Render())
		if err != nil {
			sess.logger.Error("render failed", "error", err)
			continue
		}

		sess.writeMu.Lock()
		err = sess.conn.WriteJSON(renderFrame{
			Type:     "render",
			Instance: sess.widget.InstanceID(),
			HTML:     html,
		})
		sess.writeMu.Unlock()
		if err != nil {
			sess.logger.Debug("write failed", "error", err)
			return
		}
	}
}

// readLoop processes host events until the connection drops. Submissions
// run off the loop so the page stays responsive while a store call is in
// flight.
func (sess *liveSession) readLoop(s *demoServer) {
	for {
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
			}
			return
		}

		var ev hostEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			sess.logger.Error("event decode error", "error", err)
			continue
		}

		sess.handleEvent(s, ev)
	}
}

func (sess *liveSession) handleEvent(s *demoServer, ev hostEvent) {
	w := sess.widget

	switch ev.Type {
	case "paste":
		go func() {
			if !s.registry.DispatchPaste(w.InstanceID(), ev.Data, ev.Filename) {
				sess.logger.Warn("paste dropped", "instance", w.InstanceID())
			}
		}()

	case "drop":
		go func() {
			if !s.registry.DispatchDrop(w.InstanceID(), ev.Data, ev.Filename) {
				sess.logger.Warn("drop dropped", "instance", w.InstanceID())
			}
		}()

	case "file":
		go w.SubmitBase64(context.Background(), ev.Data, ev.Filename)

	case "dragover":
		w.DragOver()

	case "dragleave":
		w.DragLeave()

	case "url-input":
		w.SetPendingURL(ev.Value)

	case "url-submit":
		go w.SubmitPendingURL(context.Background())

	case "remove":
		w.Remove()

	default:
		sess.logger.Warn("unknown event type", "type", ev.Type)
	}
}

// close tears down all live sessions ahead of HTTP shutdown.
func (s *demoServer) close() {
	s.mu.Lock()
	s.closed = true
	sessions := make([]*liveSession, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.conn.Close()
	}
}
