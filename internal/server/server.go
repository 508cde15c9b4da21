// Package server streams demo frames to browsers over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/MeKo-Tech/signalglobe/internal/render"
	"github.com/gorilla/websocket"
)

// Config configures the server.
type Config struct {
	Field noise.Field
	Globe map[globe.Variant]globe.Config // nil uses the presets
	Seed  int64

	FPS                  int
	MaxConcurrentRenders int
	RenderTimeout        time.Duration

	DefaultWidth  int
	DefaultHeight int
	MaxWidth      int
	MaxHeight     int

	Compression  png.CompressionLevel
	CacheControl string

	// DemoFS holds index.html and its assets, served under /demo/.
	DemoFS fs.FS

	// ArchivePath, when set, serves a rendered frame archive under /archive/.
	ArchivePath string
}

// Server renders frames on demand for the demo page.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	sem      chan struct{}
	globes   map[string]*liveGlobe
	renderer *render.GlobeRenderer
	upgrader websocket.Upgrader
	archive  *ArchiveHandler
	started  time.Time
	now      func() time.Time

	activeRenders atomic.Int32
	queuedRenders atomic.Int32
	totalRendered atomic.Int64
	totalFailed   atomic.Int64
	activeStreams atomic.Int32
}

// Status is the JSON body of /status.
type Status struct {
	Render  RenderStatus           `json:"render"`
	Streams int                    `json:"active_streams"`
	Globes  map[string]GlobeStatus `json:"globes"`
	Uptime  float64                `json:"uptime_seconds"`
}

// RenderStatus contains current render counters.
type RenderStatus struct {
	ActiveRenders int   `json:"active_renders"`
	QueuedRenders int   `json:"queued_renders"`
	TotalRendered int64 `json:"total_rendered"`
	TotalFailed   int64 `json:"total_failed"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// GlobeStatus summarizes a live globe.
type GlobeStatus struct {
	Markers   int       `json:"markers"`
	RotationX float64   `json:"rotation_x"`
	RotationY float64   `json:"rotation_y"`
	NextSpawn time.Time `json:"next_spawn"`
}

// New validates cfg, fills defaults and creates the live globes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Field.Validate(); err != nil {
		return nil, fmt.Errorf("invalid noise field: %w", err)
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 1
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 10 * time.Second
	}
	if cfg.DefaultWidth <= 0 {
		cfg.DefaultWidth = 640
	}
	if cfg.DefaultHeight <= 0 {
		cfg.DefaultHeight = 480
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = 1920
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = 1080
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		sem:      make(chan struct{}, cfg.MaxConcurrentRenders),
		globes:   make(map[string]*liveGlobe),
		renderer: render.NewGlobeRenderer(),
		now:      time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.started = s.now()

	for i, v := range []globe.Variant{globe.VariantSpike, globe.VariantPoint} {
		gc, err := globe.ConfigFor(string(v))
		if err != nil {
			return nil, err
		}
		if override, ok := cfg.Globe[v]; ok {
			gc = override
		}
		if err := gc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s globe config: %w", v, err)
		}
		s.globes[string(v)] = newLiveGlobe(gc, cfg.Seed+int64(i), s.started)
	}

	if cfg.ArchivePath != "" {
		h, err := NewArchiveHandler(cfg.ArchivePath, "", logger)
		if err != nil {
			return nil, err
		}
		s.archive = h
	}

	return s, nil
}

// Close releases the archive, if one is open.
func (s *Server) Close() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/demo/", http.StatusFound)
	})

	if s.cfg.DemoFS != nil {
		mux.Handle("/demo/", http.StripPrefix("/demo/", http.FileServer(http.FS(s.cfg.DemoFS))))
	}

	mux.Handle("/frames/", withCORS(http.HandlerFunc(s.serveFrame)))
	mux.Handle("/globe/markers.geojson", withCORS(http.HandlerFunc(s.serveMarkers)))
	mux.Handle("/status", withCORS(http.HandlerFunc(s.serveStatus)))
	mux.HandleFunc("/ws/", s.serveStream)
	if s.archive != nil {
		mux.Handle("/archive/", withCORS(s.archive))
	}

	return mux
}

// Run advances the live globes and serves addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.Close()

	go s.tick(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log().Info("demo server listening",
		"addr", addr,
		"fps", s.cfg.FPS,
		"max_concurrent_renders", s.cfg.MaxConcurrentRenders,
		"archive", s.cfg.ArchivePath,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

// Status returns the current counters.
func (s *Server) Status() Status {
	globes := make(map[string]GlobeStatus, len(s.globes))
	for name, l := range s.globes {
		globes[name] = l.summary()
	}

	return Status{
		Render: RenderStatus{
			ActiveRenders: int(s.activeRenders.Load()),
			QueuedRenders: int(s.queuedRenders.Load()),
			TotalRendered: s.totalRendered.Load(),
			TotalFailed:   s.totalFailed.Load(),
			MaxConcurrent: s.cfg.MaxConcurrentRenders,
		},
		Streams: int(s.activeStreams.Load()),
		Globes:  globes,
		Uptime:  s.now().Sub(s.started).Seconds(),
	}
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
		s.log().Error("failed to encode status", "error", err)
		http.Error(w, "failed to encode status", http.StatusInternalServerError)
	}
}

func (s *Server) serveMarkers(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = string(globe.VariantSpike)
	}
	l, ok := s.globes[variant]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown globe variant %q", variant), http.StatusNotFound)
		return
	}

	data, err := l.state().FeatureCollection().MarshalJSON()
	if err != nil {
		s.log().Error("failed to encode markers", "variant", variant, "error", err)
		http.Error(w, "failed to encode markers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// demos returns the names a client may request.
func (s *Server) demos() []string {
	names := []string{"noise"}
	for name := range s.globes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
