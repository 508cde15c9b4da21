package globe

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Globe is the explicit animation state of one globe. It is driven by one
// Update call per displayed frame and is not safe for concurrent use.
type Globe struct {
	cfg Config
	rng *rand.Rand

	rotX, rotY float64
	velX, velY float64
	dragging   bool

	markers   []*Marker
	nextID    int
	nextSpawn time.Time
	now       time.Time
	started   bool
}

// New creates a globe. The seed drives marker placement and spawn timing.
func New(cfg Config, seed int64) *Globe {
	return &Globe{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Config returns the globe configuration.
func (g *Globe) Config() Config { return g.cfg }

// Start resets the clock: the first marker appears FirstSpawn after now.
func (g *Globe) Start(now time.Time) {
	g.now = now
	g.nextSpawn = now.Add(g.cfg.FirstSpawn)
	g.started = true
}

// Update advances the globe by one frame.
func (g *Globe) Update(now time.Time) {
	if !g.started {
		g.Start(now)
	}
	g.now = now

	g.rotate()

	if !now.Before(g.nextSpawn) {
		g.spawn(now)
		g.nextSpawn = now.Add(g.spawnDelay())
	}

	live := g.markers[:0]
	for _, m := range g.markers {
		if m.Expired(now) {
			continue
		}
		m.Phase += g.cfg.PulseStep
		live = append(live, m)
	}
	for i := len(live); i < len(g.markers); i++ {
		g.markers[i] = nil
	}
	g.markers = live
}

func (g *Globe) rotate() {
	if g.dragging {
		g.rotX += g.velX
		g.rotY += g.velY
		g.velX *= g.cfg.DragDamping
		g.velY *= g.cfg.DragDamping
		return
	}
	g.rotY += g.cfg.AutoRotation
	g.rotX += g.velX
	g.rotY += g.velY
	g.velX *= g.cfg.FreeDamping
	g.velY *= g.cfg.FreeDamping
}

func (g *Globe) spawn(now time.Time) {
	phi, theta := SpawnAngles(g.rng)
	height := g.cfg.SpikeMin
	if g.cfg.SpikeMax > g.cfg.SpikeMin {
		height += g.rng.Float64() * (g.cfg.SpikeMax - g.cfg.SpikeMin)
	}
	g.nextID++
	g.markers = append(g.markers, &Marker{
		ID:       g.nextID,
		Phi:      phi,
		Theta:    theta,
		Spawned:  now,
		Lifetime: g.cfg.Lifetime,
		Height:   height,
	})
}

func (g *Globe) spawnDelay() time.Duration {
	span := g.cfg.SpawnMax - g.cfg.SpawnMin
	if span <= 0 {
		return g.cfg.SpawnMin
	}
	return g.cfg.SpawnMin + time.Duration(g.rng.Int63n(int64(span)))
}

// BeginDrag starts pointer-driven rotation.
func (g *Globe) BeginDrag() { g.dragging = true }

// Drag feeds a pointer movement in pixels. Horizontal motion spins around y,
// vertical motion tilts around x.
func (g *Globe) Drag(dx, dy float64) {
	if !g.dragging {
		return
	}
	g.velX = dy * g.cfg.DragSensitivity
	g.velY = dx * g.cfg.DragSensitivity
}

// EndDrag releases the pointer; remaining velocity decays as momentum.
func (g *Globe) EndDrag() { g.dragging = false }

// Dragging reports whether a drag is in progress.
func (g *Globe) Dragging() bool { return g.dragging }

// Angles returns the current rotation around x and y in radians.
func (g *Globe) Angles() (x, y float64) { return g.rotX, g.rotY }

// Rotation returns the globe orientation: rotation about x applied after
// rotation about y.
func (g *Globe) Rotation() mgl64.Mat3 {
	return mgl64.Rotate3DX(g.rotX).Mul3(mgl64.Rotate3DY(g.rotY))
}

// NextSpawn returns when the next marker is due.
func (g *Globe) NextSpawn() time.Time { return g.nextSpawn }

// Len returns the number of live markers.
func (g *Globe) Len() int { return len(g.markers) }

// Markers returns copies of the live markers.
func (g *Globe) Markers() []Marker {
	out := make([]Marker, len(g.markers))
	for i, m := range g.markers {
		out[i] = *m
	}
	return out
}
