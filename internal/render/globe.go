// Package render rasterizes noise and globe frames into images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/signalglobe/internal/composite"
	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/disintegration/gift"
	"github.com/go-gl/mathgl/mgl64"
)

// Style holds the globe colors. Alpha channels are ignored; opacities are
// set separately.
type Style struct {
	Wire       color.NRGBA
	Shade      color.NRGBA
	Line       color.NRGBA
	Tip        color.NRGBA
	WireAlpha  float64
	ShadeAlpha float64

	WireWidth float64 // pixels
	LineWidth float64 // pixels

	// GlowSigma is the blur applied to the marker layer to form the halo.
	// Zero disables the glow.
	GlowSigma float32
	GlowAlpha float64

	// Hide markers on the far side of the globe.
	Occlude bool
}

// DefaultStyle matches the green-on-transparent look of the page.
func DefaultStyle() Style {
	return Style{
		Wire:       color.NRGBA{R: 0x00, G: 0x44, B: 0x22, A: 255},
		Shade:      color.NRGBA{A: 255},
		Line:       color.NRGBA{R: 0x00, G: 0xff, B: 0x44, A: 255},
		Tip:        color.NRGBA{R: 0x44, G: 0xff, B: 0x66, A: 255},
		WireAlpha:  0.2,
		ShadeAlpha: 0.05,
		WireWidth:  1,
		LineWidth:  2,
		GlowSigma:  3,
		GlowAlpha:  0.6,
		Occlude:    true,
	}
}

// GlobeRenderer draws globe states. A zero value is not usable; use
// NewGlobeRenderer.
type GlobeRenderer struct {
	Camera Camera
	Style  Style

	// Wireframe tessellation, as longitude and latitude segments.
	WidthSegments  int
	HeightSegments int
}

// NewGlobeRenderer returns a renderer with the default camera and style and
// a 64×32 wireframe.
func NewGlobeRenderer() *GlobeRenderer {
	return &GlobeRenderer{
		Camera:         DefaultCamera(),
		Style:          DefaultStyle(),
		WidthSegments:  64,
		HeightSegments: 32,
	}
}

// GlobeFrame draws s with the default renderer.
func GlobeFrame(s globe.State, w, h int) (*image.NRGBA, error) {
	return NewGlobeRenderer().Frame(s, w, h)
}

// Frame draws one w×h frame of the globe state on a transparent background.
func (r *GlobeRenderer) Frame(s globe.State, w, h int) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	if r.WidthSegments < 3 || r.HeightSegments < 2 {
		return nil, fmt.Errorf("wireframe needs at least 3x2 segments, got %dx%d", r.WidthSegments, r.HeightSegments)
	}

	proj := r.Camera.Projector(w, h)
	st := r.Style

	body := NewCanvas(w, h)
	cx, cy, _ := proj.Project(mgl64.Vec3{})
	body.Disc(cx, cy, proj.Silhouette(s.Config.InnerRadius))
	body.Fill(withAlpha(st.Shade, st.ShadeAlpha))
	r.wireframe(body, proj, s.Rotation, s.Config.Radius)
	body.Fill(withAlpha(st.Wire, st.WireAlpha))

	markers := NewCanvas(w, h)
	drawn := r.markers(markers, proj, s)

	layers := []image.Image{body.Image()}
	if drawn > 0 && st.GlowSigma > 0 {
		layers = append(layers, glow(markers.Image(), st.GlowSigma, st.GlowAlpha))
	}
	layers = append(layers, markers.Image())

	frame, err := composite.Stack(nil, layers, image.Rect(0, 0, w, h))
	if err != nil {
		return nil, fmt.Errorf("failed to composite globe layers: %w", err)
	}
	return frame, nil
}

// wireframe adds the latitude rings and meridians of a UV sphere with poles
// on the y axis.
func (r *GlobeRenderer) wireframe(c *Canvas, proj Projector, rot mgl64.Mat3, radius float64) {
	ws, hs := r.WidthSegments, r.HeightSegments
	vertex := func(i, j int) mgl64.Vec3 {
		phi := 2 * math.Pi * float64(i) / float64(ws)
		theta := math.Pi * float64(j) / float64(hs)
		local := mgl64.Vec3{
			-radius * math.Cos(phi) * math.Sin(theta),
			radius * math.Cos(theta),
			radius * math.Sin(phi) * math.Sin(theta),
		}
		return rot.Mul3x1(local)
	}

	line := func(a, b mgl64.Vec3) {
		x0, y0, ok0 := proj.Project(a)
		x1, y1, ok1 := proj.Project(b)
		if ok0 && ok1 {
			c.Line(x0, y0, x1, y1, r.Style.WireWidth)
		}
	}

	for j := 1; j < hs; j++ {
		for i := 0; i < ws; i++ {
			line(vertex(i, j), vertex(i+1, j))
		}
	}
	for i := 0; i < ws; i++ {
		for j := 0; j < hs; j++ {
			line(vertex(i, j), vertex(i, j+1))
		}
	}
}

// markers draws every visible marker and returns how many were drawn. Each
// marker is filled on its own so opacities stay independent.
func (r *GlobeRenderer) markers(c *Canvas, proj Projector, s globe.State) int {
	st := r.Style
	drawn := 0
	for _, m := range s.Markers {
		if m.Opacity <= 0 {
			continue
		}
		if st.Occlude && !proj.Facing(m.Base) {
			continue
		}
		bx, by, okBase := proj.Project(m.Base)
		tx, ty, okTip := proj.Project(m.Tip)
		if !okBase || !okTip {
			continue
		}

		if s.Config.Variant == globe.VariantSpike {
			c.Line(bx, by, tx, ty, st.LineWidth)
			c.Fill(withAlpha(st.Line, m.LineAlpha))
		}

		size := proj.Scale(m.Tip, s.Config.TipSize*m.TipScale)
		c.Disc(tx, ty, math.Max(size, st.LineWidth/2+0.5))
		c.Fill(withAlpha(st.Tip, m.TipAlpha))
		drawn++
	}
	return drawn
}

// glow blurs the marker layer into a soft halo.
func glow(src *image.NRGBA, sigma float32, alpha float64) *image.NRGBA {
	g := gift.New(gift.GaussianBlur(sigma))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	if alpha < 1 {
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = uint8(math.Round(float64(dst.Pix[i]) * alpha))
		}
	}
	return dst
}
