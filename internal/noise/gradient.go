// Package noise implements the procedural noise field behind the animated
// two-color background: 3D gradient noise sharpened and mapped onto a
// color ramp.
package noise

import "math"

// Source produces a scalar noise value for a 3D point.
type Source interface {
	Noise3D(x, y, z float64) float64
}

// Hash projection vectors; one per gradient component.
var (
	hashX = [3]float64{127.1, 311.7, 74.7}
	hashY = [3]float64{269.5, 183.3, 246.1}
	hashZ = [3]float64{113.5, 271.9, 124.6}
)

const hashScale = 43758.5453

// Gradient is lattice gradient noise whose corner gradients come from a
// sin-fract hash of the integer corner coordinates. It carries no tables and
// no seed: the value is a pure function of the input point.
//
// When Period > 0 the z lattice index wraps modulo Period before hashing, so
// Noise3D(x, y, z) == Noise3D(x, y, z+Period) and a time axis wrapped into
// [0, Period) loops without a seam.
type Gradient struct {
	Period int
}

// Noise3D returns the noise value at p, approximately within [-1, 1].
func (g Gradient) Noise3D(x, y, z float64) float64 {
	ix, iy, iz := math.Floor(x), math.Floor(y), math.Floor(z)
	fx, fy, fz := x-ix, y-iy, z-iz
	i, j, k := int(ix), int(iy), int(iz)

	c000 := g.corner(i, j, k, fx, fy, fz)
	c100 := g.corner(i+1, j, k, fx-1, fy, fz)
	c010 := g.corner(i, j+1, k, fx, fy-1, fz)
	c110 := g.corner(i+1, j+1, k, fx-1, fy-1, fz)
	c001 := g.corner(i, j, k+1, fx, fy, fz-1)
	c101 := g.corner(i+1, j, k+1, fx-1, fy, fz-1)
	c011 := g.corner(i, j+1, k+1, fx, fy-1, fz-1)
	c111 := g.corner(i+1, j+1, k+1, fx-1, fy-1, fz-1)

	u, v, w := Fade(fx), Fade(fy), Fade(fz)

	return lerp(
		lerp(lerp(c000, c100, u), lerp(c010, c110, u), v),
		lerp(lerp(c001, c101, u), lerp(c011, c111, u), v),
		w,
	)
}

// GradientAt returns the pseudo-random gradient assigned to a lattice corner,
// each component in [-1, 1).
func (g Gradient) GradientAt(i, j, k int) (gx, gy, gz float64) {
	if g.Period > 0 {
		k = wrapIndex(k, g.Period)
	}
	fi, fj, fk := float64(i), float64(j), float64(k)

	gx = fract(math.Sin(fi*hashX[0]+fj*hashX[1]+fk*hashX[2])*hashScale)*2 - 1
	gy = fract(math.Sin(fi*hashY[0]+fj*hashY[1]+fk*hashY[2])*hashScale)*2 - 1
	gz = fract(math.Sin(fi*hashZ[0]+fj*hashZ[1]+fk*hashZ[2])*hashScale)*2 - 1
	return gx, gy, gz
}

func (g Gradient) corner(i, j, k int, dx, dy, dz float64) float64 {
	gx, gy, gz := g.GradientAt(i, j, k)
	return gx*dx + gy*dy + gz*dz
}

// Fade is the quintic smoothing curve 6t^5 - 15t^4 + 10t^3.
func Fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func fract(x float64) float64 { return x - math.Floor(x) }

func wrapIndex(x, max int) int {
	x %= max
	if x < 0 {
		x += max
	}
	return x
}
