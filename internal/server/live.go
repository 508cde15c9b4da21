package server

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
)

// liveGlobe is a globe advanced in wall-clock time and shared by every
// client of a variant.
type liveGlobe struct {
	g  *globe.Globe
	mu sync.Mutex
}

func newLiveGlobe(cfg globe.Config, seed int64, now time.Time) *liveGlobe {
	g := globe.New(cfg, seed)
	g.Start(now)
	g.Update(now)
	return &liveGlobe{g: g}
}

func (l *liveGlobe) step(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.g.Update(now)
}

func (l *liveGlobe) state() globe.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.State()
}

// drag applies a pointer gesture: "begin", "move" or "end".
func (l *liveGlobe) drag(phase string, dx, dy float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch phase {
	case "begin":
		l.g.BeginDrag()
	case "move":
		l.g.Drag(dx, dy)
	case "end":
		l.g.EndDrag()
	}
}

func (l *liveGlobe) summary() GlobeStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	rx, ry := l.g.Angles()
	return GlobeStatus{
		Markers:   l.g.Len(),
		RotationX: rx,
		RotationY: ry,
		NextSpawn: l.g.NextSpawn(),
	}
}

// tick advances every live globe once per frame until ctx is done.
func (s *Server) tick(ctx context.Context) {
	ticker := time.NewTicker(frameInterval(s.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			for _, l := range s.globes {
				l.step(now)
			}
		}
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
