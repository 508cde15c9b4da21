package globe

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkerView is a marker resolved for drawing at one instant.
type MarkerView struct {
	ID        int
	Base      mgl64.Vec3
	Tip       mgl64.Vec3
	Opacity   float64
	LineAlpha float64
	TipAlpha  float64
	TipScale  float64
	Progress  float64
	Age       time.Duration
	Location  orb.Point
}

// State is an immutable snapshot of a globe, enough to draw one frame.
type State struct {
	Config   Config
	Rotation mgl64.Mat3
	Time     time.Time
	Markers  []MarkerView
}

// State captures the globe as of the last Update.
func (g *Globe) State() State {
	rot := g.Rotation()
	views := make([]MarkerView, 0, len(g.markers))
	for _, m := range g.markers {
		progress := m.Progress(g.now)
		o := Opacity(progress, g.cfg.FadeIn, g.cfg.FadeOut)
		views = append(views, MarkerView{
			ID:        m.ID,
			Base:      m.Position(rot, g.cfg.MarkerRadius),
			Tip:       m.Tip(rot, g.cfg.MarkerRadius),
			Opacity:   o,
			LineAlpha: o * 0.8,
			TipAlpha:  o * 0.9,
			TipScale:  m.Pulse(g.cfg.PulseAmount),
			Progress:  progress,
			Age:       m.Age(g.now),
			Location:  m.Location(),
		})
	}
	return State{
		Config:   g.cfg,
		Rotation: rot,
		Time:     g.now,
		Markers:  views,
	}
}

// FeatureCollection exports the live markers as GeoJSON points.
func (s State) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range s.Markers {
		f := geojson.NewFeature(m.Location)
		f.ID = m.ID
		f.Properties["variant"] = string(s.Config.Variant)
		f.Properties["opacity"] = m.Opacity
		f.Properties["progress"] = m.Progress
		f.Properties["age_ms"] = m.Age.Milliseconds()
		fc.Append(f)
	}
	return fc
}

// Simulate runs a fresh globe for frames steps at fps, starting at start, and
// returns the state after every step. Frame i is at start + i/fps.
func Simulate(cfg Config, seed int64, fps, frames int, start time.Time) []State {
	g := New(cfg, seed)
	g.Start(start)
	states := make([]State, frames)
	for i := 0; i < frames; i++ {
		g.Update(start.Add(FrameTime(i, fps)))
		states[i] = g.State()
	}
	return states
}

// FrameTime returns the offset of frame i at fps.
func FrameTime(i, fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Duration(i) * time.Second / time.Duration(fps)
}
