package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking at the globe center.
type Camera struct {
	Fov    float64 // vertical, degrees
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	Near   float64
	Far    float64
}

// DefaultCamera sits on the +z axis five units from the origin.
func DefaultCamera() Camera {
	return Camera{
		Fov:    75,
		Eye:    mgl64.Vec3{0, 0, 5},
		Target: mgl64.Vec3{0, 0, 0},
		Up:     mgl64.Vec3{0, 1, 0},
		Near:   0.1,
		Far:    1000,
	}
}

// Projector maps world points to pixel coordinates of a w×h viewport.
type Projector struct {
	cam    Camera
	mvp    mgl64.Mat4
	width  float64
	height float64
	focal  float64 // pixels per unit at distance one
}

// Projector builds the view-projection for a viewport. The aspect ratio is
// taken from the viewport so resizing never stretches the globe.
func (c Camera) Projector(w, h int) Projector {
	aspect := float64(w) / float64(h)
	proj := mgl64.Perspective(mgl64.DegToRad(c.Fov), aspect, c.Near, c.Far)
	view := mgl64.LookAtV(c.Eye, c.Target, c.Up)
	return Projector{
		cam:    c,
		mvp:    proj.Mul4(view),
		width:  float64(w),
		height: float64(h),
		focal:  float64(h) / 2 / math.Tan(mgl64.DegToRad(c.Fov)/2),
	}
}

// Project returns the pixel position of p, with y growing downward. ok is
// false for points behind the near plane.
func (p Projector) Project(v mgl64.Vec3) (x, y float64, ok bool) {
	clip := p.mvp.Mul4x1(v.Vec4(1))
	w := clip.W()
	if w <= p.cam.Near {
		return 0, 0, false
	}
	nx := clip.X() / w
	ny := clip.Y() / w
	return (nx + 1) * 0.5 * p.width, (1 - ny) * 0.5 * p.height, true
}

// Scale returns the on-screen size in pixels of a length r located at v.
func (p Projector) Scale(v mgl64.Vec3, r float64) float64 {
	d := v.Sub(p.cam.Eye).Len()
	if d <= 0 {
		return 0
	}
	return r * p.focal / d
}

// Silhouette returns the screen radius of a sphere of radius r centered at
// the origin.
func (p Projector) Silhouette(r float64) float64 {
	d := p.cam.Eye.Sub(p.cam.Target).Len()
	if d <= r {
		return math.Max(p.width, p.height)
	}
	return r * p.focal / math.Sqrt(d*d-r*r)
}

// Facing reports whether the surface point v, on a sphere centered at the
// origin, faces the camera.
func (p Projector) Facing(v mgl64.Vec3) bool {
	return v.Dot(p.cam.Eye.Sub(v)) >= 0
}
