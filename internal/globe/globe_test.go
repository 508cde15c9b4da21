package globe

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func TestFirstSpawnAfterDelay(t *testing.T) {
	start := time.Unix(0, 0)
	g := New(SpikeConfig(), 1)
	g.Start(start)

	g.Update(start.Add(500 * time.Millisecond))
	assert.Equal(t, 0, g.Len())

	g.Update(start.Add(time.Second))
	assert.Equal(t, 1, g.Len())

	next := g.NextSpawn().Sub(start.Add(time.Second))
	assert.GreaterOrEqual(t, next, 3*time.Second)
	assert.Less(t, next, 8*time.Second)
}

func TestMarkersExpireAfterLifetime(t *testing.T) {
	cfg := SpikeConfig()
	cfg.SpawnMin = time.Hour
	cfg.SpawnMax = time.Hour

	start := time.Unix(0, 0)
	g := New(cfg, 1)
	g.Start(start)

	spawnAt := start.Add(cfg.FirstSpawn)
	g.Update(spawnAt)
	require.Equal(t, 1, g.Len())

	g.Update(spawnAt.Add(cfg.Lifetime - frame))
	assert.Equal(t, 1, g.Len())

	g.Update(spawnAt.Add(cfg.Lifetime))
	assert.Equal(t, 0, g.Len())
}

func TestSpawnCadence(t *testing.T) {
	cfg := PointConfig()
	start := time.Unix(0, 0)
	g := New(cfg, 9)
	g.Start(start)

	var spawnTimes []time.Time
	lastID := 0
	for i := 0; i < 60*60; i++ {
		now := start.Add(time.Duration(i) * frame)
		g.Update(now)
		for _, m := range g.Markers() {
			if m.ID > lastID {
				lastID = m.ID
				spawnTimes = append(spawnTimes, m.Spawned)
			}
		}
	}

	require.Greater(t, len(spawnTimes), 10)
	for i := 1; i < len(spawnTimes); i++ {
		gap := spawnTimes[i].Sub(spawnTimes[i-1])
		assert.GreaterOrEqual(t, gap, cfg.SpawnMin)
		assert.Less(t, gap, cfg.SpawnMax+frame)
	}
}

func TestAutoRotation(t *testing.T) {
	cfg := SpikeConfig()
	start := time.Unix(0, 0)
	g := New(cfg, 1)
	g.Start(start)

	for i := 1; i <= 100; i++ {
		g.Update(start.Add(time.Duration(i) * frame))
	}
	x, y := g.Angles()
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 100*cfg.AutoRotation, y, 1e-9)
}

func TestDragMomentumDecays(t *testing.T) {
	cfg := SpikeConfig()
	cfg.AutoRotation = 0
	start := time.Unix(0, 0)
	g := New(cfg, 1)
	g.Start(start)

	g.Drag(10, 10)
	g.Update(start.Add(frame))
	x, y := g.Angles()
	assert.Zero(t, x, "drag without BeginDrag is ignored")
	assert.Zero(t, y)

	g.BeginDrag()
	assert.True(t, g.Dragging())
	g.Drag(20, -10)
	g.Update(start.Add(2 * frame))
	x, y = g.Angles()
	assert.InDelta(t, -10*cfg.DragSensitivity, x, 1e-12)
	assert.InDelta(t, 20*cfg.DragSensitivity, y, 1e-12)

	g.EndDrag()
	_, before := g.Angles()
	for i := 3; i < 600; i++ {
		g.Update(start.Add(time.Duration(i) * frame))
	}
	_, after := g.Angles()
	spin := after - before
	// Geometric series of 20*0.005*0.95 decaying by 0.98 per frame.
	limit := 20 * cfg.DragSensitivity * cfg.DragDamping / (1 - cfg.FreeDamping)
	assert.Greater(t, spin, 0.0)
	assert.Less(t, spin, limit+1e-9)
}

func TestStateFollowsRotation(t *testing.T) {
	cfg := SpikeConfig()
	start := time.Unix(0, 0)
	g := New(cfg, 5)
	g.Start(start)

	now := start.Add(cfg.FirstSpawn)
	g.Update(now)
	s1 := g.State()
	require.Len(t, s1.Markers, 1)
	assert.Equal(t, 0.0, s1.Markers[0].Opacity)

	for i := 1; i <= 120; i++ {
		g.Update(now.Add(time.Duration(i) * frame))
	}
	s2 := g.State()
	require.Len(t, s2.Markers, 1)

	// The marker base moves with the globe but stays on its surface.
	assert.NotEqual(t, s1.Markers[0].Base, s2.Markers[0].Base)
	assert.InDelta(t, cfg.MarkerRadius, s2.Markers[0].Base.Len(), 1e-9)

	m := g.Markers()[0]
	assert.Equal(t, m.Position(s2.Rotation, cfg.MarkerRadius), s2.Markers[0].Base)

	// Two seconds into an eight second life is past the fade-in.
	assert.Equal(t, 1.0, s2.Markers[0].Opacity)
	assert.InDelta(t, 0.8, s2.Markers[0].LineAlpha, 1e-12)
	assert.InDelta(t, 0.9, s2.Markers[0].TipAlpha, 1e-12)
}

func TestSimulateIsDeterministic(t *testing.T) {
	start := time.Unix(0, 0)
	a := Simulate(SpikeConfig(), 77, 30, 300, start)
	b := Simulate(SpikeConfig(), 77, 30, 300, start)
	require.Len(t, a, 300)
	assert.Equal(t, a, b)

	seen := 0
	for _, s := range a {
		seen += len(s.Markers)
	}
	assert.Greater(t, seen, 0)
}

func TestFeatureCollection(t *testing.T) {
	start := time.Unix(0, 0)
	states := Simulate(PointConfig(), 3, 30, 60, start)
	last := states[len(states)-1]
	require.NotEmpty(t, last.Markers)

	data, err := json.Marshal(last.FeatureCollection())
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, len(last.Markers))
	assert.Equal(t, "Point", decoded.Features[0].Geometry.Type)
	assert.Equal(t, "point", decoded.Features[0].Properties["variant"])
}

func TestFrameTime(t *testing.T) {
	assert.Equal(t, time.Duration(0), FrameTime(0, 30))
	assert.Equal(t, time.Second, FrameTime(30, 30))
	assert.Equal(t, 500*time.Millisecond, FrameTime(15, 30))
}
