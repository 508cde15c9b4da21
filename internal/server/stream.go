package server

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/frames"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// controlMessage is sent by the page: a viewport size, a drag gesture, or
// both.
type controlMessage struct {
	W    int     `json:"w"`
	H    int     `json:"h"`
	Drag string  `json:"drag"` // begin, move or end
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
}

type viewport struct {
	mu     sync.Mutex
	width  int
	height int
}

func (v *viewport) set(w, h int) {
	v.mu.Lock()
	v.width, v.height = w, h
	v.mu.Unlock()
}

func (v *viewport) get() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// serveStream pushes one PNG per frame as a binary message. Each frame reads
// the latest viewport size sent by the client.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request) {
	demo, ok := parseStreamPath(r.URL.Path)
	if !ok || !s.knownDemo(demo) {
		http.NotFound(w, r)
		return
	}

	width, height := s.cfg.DefaultWidth, s.cfg.DefaultHeight
	if v, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil {
		width = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("h")); err == nil {
		height = v
	}
	width, height, err := s.clampSize(width, height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Warn("websocket upgrade failed", "demo", demo, "error", err)
		return
	}
	defer conn.Close()

	s.activeStreams.Add(1)
	defer s.activeStreams.Add(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	vp := &viewport{width: width, height: height}
	go s.readControl(ctx, cancel, conn, demo, vp)

	s.log().Info("stream opened", "demo", demo, "remote", r.RemoteAddr)
	defer s.log().Info("stream closed", "demo", demo, "remote", r.RemoteAddr)

	ticker := time.NewTicker(frameInterval(s.cfg.FPS))
	defer ticker.Stop()
	start := s.now()

	for {
		fw, fh := vp.get()
		img, err := s.renderBounded(ctx, frameRequest{
			demo:    demo,
			width:   fw,
			height:  fh,
			elapsed: s.now().Sub(start).Seconds(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log().Warn("stream frame dropped", "demo", demo, "error", err)
		} else {
			data, err := frames.EncodePNG(img, s.cfg.Compression)
			if err != nil {
				s.log().Error("failed to encode stream frame", "demo", demo, "error", err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				s.log().Debug("stream write failed", "demo", demo, "error", err)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// readControl applies client messages until the connection fails, then
// cancels the stream.
func (s *Server) readControl(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, demo string, vp *viewport) {
	defer cancel()
	for {
		var msg controlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log().Debug("stream control read ended", "demo", demo, "error", err)
			}
			return
		}

		if msg.W != 0 || msg.H != 0 {
			if w, h, err := s.clampSize(msg.W, msg.H); err == nil {
				vp.set(w, h)
			}
		}
		if msg.Drag != "" {
			if l, ok := s.globes[demo]; ok {
				l.drag(msg.Drag, msg.DX, msg.DY)
			}
		}
	}
}

func parseStreamPath(requestPath string) (string, bool) {
	// Expect: /ws/spike
	if !strings.HasPrefix(requestPath, "/ws/") || path.Dir(requestPath) != "/ws" {
		return "", false
	}
	name := path.Base(requestPath)
	return name, name != "" && name != "ws"
}
