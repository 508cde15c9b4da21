package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/frames"
	"github.com/MeKo-Tech/signalglobe/internal/render"
)

var errUnknownDemo = errors.New("unknown demo")

// frameRequest is a parsed /frames/ request.
type frameRequest struct {
	demo    string
	width   int
	height  int
	elapsed float64
}

func (s *Server) serveFrame(w http.ResponseWriter, r *http.Request) {
	demo, ok := parseFramePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	req, err := s.parseFrameQuery(demo, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	img, err := s.renderBounded(r.Context(), req)
	switch {
	case errors.Is(err, errUnknownDemo):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, context.DeadlineExceeded):
		s.log().Warn("frame render timed out", "demo", demo, "timeout", s.cfg.RenderTimeout)
		http.Error(w, "frame render timed out", http.StatusGatewayTimeout)
		return
	case errors.Is(err, context.Canceled):
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	case err != nil:
		s.log().Error("failed to render frame", "demo", demo, "error", err)
		http.Error(w, fmt.Sprintf("failed to render frame: %v", err), http.StatusInternalServerError)
		return
	}

	data, err := frames.EncodePNG(img, s.cfg.Compression)
	if err != nil {
		s.log().Error("failed to encode frame", "demo", demo, "error", err)
		http.Error(w, "failed to encode frame", http.StatusInternalServerError)
		return
	}

	s.log().Debug("frame rendered on-demand", "demo", demo, "w", req.width, "h", req.height, "ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// renderBounded renders under the concurrency semaphore and the per-request
// timeout. A render that outlives the timeout keeps its semaphore slot until
// it finishes, so abandoned work still counts against the limit.
func (s *Server) renderBounded(ctx context.Context, req frameRequest) (*image.NRGBA, error) {
	if !s.knownDemo(req.demo) {
		return nil, fmt.Errorf("%w %q (want one of %v)", errUnknownDemo, req.demo, s.demos())
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	s.queuedRenders.Add(1)
	select {
	case s.sem <- struct{}{}:
		s.queuedRenders.Add(-1)
	case <-ctx.Done():
		s.queuedRenders.Add(-1)
		return nil, ctx.Err()
	}

	type result struct {
		img *image.NRGBA
		err error
	}
	done := make(chan result, 1)

	s.activeRenders.Add(1)
	go func() {
		defer func() {
			s.activeRenders.Add(-1)
			<-s.sem
		}()
		img, err := s.renderFrame(req)
		if err != nil {
			s.totalFailed.Add(1)
		} else {
			s.totalRendered.Add(1)
		}
		done <- result{img: img, err: err}
	}()

	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) renderFrame(req frameRequest) (*image.NRGBA, error) {
	if req.demo == "noise" {
		return render.NoiseFrame(s.cfg.Field, req.width, req.height, req.elapsed)
	}
	l, ok := s.globes[req.demo]
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownDemo, req.demo)
	}
	return s.renderer.Frame(l.state(), req.width, req.height)
}

func (s *Server) knownDemo(name string) bool {
	if name == "noise" {
		return true
	}
	_, ok := s.globes[name]
	return ok
}

// parseFrameQuery reads w, h and t. Missing sizes use the defaults; t is
// seconds since the animation started and only affects the noise field,
// where it defaults to the server uptime.
func (s *Server) parseFrameQuery(demo string, r *http.Request) (frameRequest, error) {
	q := r.URL.Query()
	req := frameRequest{
		demo:    demo,
		width:   s.cfg.DefaultWidth,
		height:  s.cfg.DefaultHeight,
		elapsed: s.now().Sub(s.started).Seconds(),
	}

	var err error
	if v := q.Get("w"); v != "" {
		if req.width, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid width %q", v)
		}
	}
	if v := q.Get("h"); v != "" {
		if req.height, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid height %q", v)
		}
	}
	if v := q.Get("t"); v != "" {
		if req.elapsed, err = strconv.ParseFloat(v, 64); err != nil || math.IsNaN(req.elapsed) || math.IsInf(req.elapsed, 0) {
			return req, fmt.Errorf("invalid time %q", v)
		}
	}

	req.width, req.height, err = s.clampSize(req.width, req.height)
	return req, err
}

func (s *Server) clampSize(w, h int) (int, int, error) {
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("frame size must be positive, got %dx%d", w, h)
	}
	return min(w, s.cfg.MaxWidth), min(h, s.cfg.MaxHeight), nil
}

func parseFramePath(requestPath string) (string, bool) {
	// Expect: /frames/noise.png
	if !strings.HasPrefix(requestPath, "/frames/") {
		return "", false
	}
	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return "", false
	}
	name := strings.TrimSuffix(base, ".png")
	if name == "" || path.Dir(requestPath) != "/frames" {
		return "", false
	}
	return name, true
}
