package globe

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

// Marker is a transient signal on the globe surface. Its angles are fixed in
// the globe's own frame; world positions follow the globe rotation.
type Marker struct {
	ID       int
	Phi      float64 // polar angle from +z
	Theta    float64 // azimuth around z
	Spawned  time.Time
	Lifetime time.Duration
	Height   float64
	Phase    float64
}

// SpawnAngles draws a point uniformly distributed over the sphere.
// phi = acos(-1 + 2u) keeps equal-area bands equally likely.
func SpawnAngles(rng *rand.Rand) (phi, theta float64) {
	phi = math.Acos(-1 + 2*rng.Float64())
	theta = rng.Float64() * 2 * math.Pi
	return phi, theta
}

// Opacity is the three-segment lifecycle ramp: linear fade-in over the first
// fadeIn of the lifetime, fully visible, then linear fade-out over the final
// fadeOut. Progress outside [0,1] is invisible.
func Opacity(progress, fadeIn, fadeOut float64) float64 {
	switch {
	case progress <= 0 || progress >= 1:
		return 0
	case progress < fadeIn:
		return progress / fadeIn
	case progress > 1-fadeOut:
		return (1 - progress) / fadeOut
	default:
		return 1
	}
}

// Age returns the time since the marker spawned.
func (m *Marker) Age(now time.Time) time.Duration {
	return now.Sub(m.Spawned)
}

// Progress returns the age as a fraction of the lifetime.
func (m *Marker) Progress(now time.Time) float64 {
	return float64(m.Age(now)) / float64(m.Lifetime)
}

// Expired reports whether the marker has outlived its lifetime.
func (m *Marker) Expired(now time.Time) bool {
	return m.Progress(now) >= 1
}

// Local returns the surface point in the globe frame at the given radius.
func (m *Marker) Local(radius float64) mgl64.Vec3 {
	sinPhi := math.Sin(m.Phi)
	return mgl64.Vec3{
		radius * sinPhi * math.Cos(m.Theta),
		radius * sinPhi * math.Sin(m.Theta),
		radius * math.Cos(m.Phi),
	}
}

// Position returns the marker base in world space for a globe rotation.
func (m *Marker) Position(rot mgl64.Mat3, radius float64) mgl64.Vec3 {
	return rot.Mul3x1(m.Local(radius))
}

// Tip returns the outer end of the marker: the base pushed outward along the
// surface normal by Height.
func (m *Marker) Tip(rot mgl64.Mat3, radius float64) mgl64.Vec3 {
	base := m.Position(rot, radius)
	return base.Add(base.Normalize().Mul(m.Height))
}

// Pulse returns the tip scale factor for the current phase.
func (m *Marker) Pulse(amount float64) float64 {
	return 1 + math.Sin(m.Phase)*amount
}

// Location returns the marker position as lon/lat degrees, with the +z pole
// as the north pole.
func (m *Marker) Location() orb.Point {
	lat := 90 - m.Phi*180/math.Pi
	lon := math.Mod(m.Theta*180/math.Pi+180, 360) - 180
	return orb.Point{lon, lat}
}
