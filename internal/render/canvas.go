package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// Canvas accumulates line and disc shapes into one path and fills them with a
// single color. Overlapping shapes in a path do not stack their alpha.
type Canvas struct {
	img   *image.NRGBA
	ras   *vector.Rasterizer
	empty bool
}

// NewCanvas creates a transparent canvas of w×h pixels.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		img:   image.NewNRGBA(image.Rect(0, 0, w, h)),
		ras:   vector.NewRasterizer(w, h),
		empty: true,
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Line adds a stroke of the given pixel width to the current path.
func (c *Canvas) Line(x0, y0, x1, y1, width float64) {
	dx := x1 - x0
	dy := y1 - y0
	segLen := math.Hypot(dx, dy)
	if segLen == 0 {
		c.Disc(x0, y0, width/2)
		return
	}

	// Offset along the left normal. Every quad winds the same way no matter
	// the line direction, so overlaps never cancel out.
	nx := -dy / segLen * width / 2
	ny := dx / segLen * width / 2

	c.ras.MoveTo(float32(x0+nx), float32(y0+ny))
	c.ras.LineTo(float32(x1+nx), float32(y1+ny))
	c.ras.LineTo(float32(x1-nx), float32(y1-ny))
	c.ras.LineTo(float32(x0-nx), float32(y0-ny))
	c.ras.ClosePath()
	c.empty = false
}

// Disc adds a filled circle to the current path.
func (c *Canvas) Disc(cx, cy, r float64) {
	if r <= 0 {
		return
	}
	segments := int(math.Ceil(r * 4))
	if segments < 12 {
		segments = 12
	}
	if segments > 96 {
		segments = 96
	}

	for i := 0; i < segments; i++ {
		a := -2 * math.Pi * float64(i) / float64(segments)
		x := float32(cx + r*math.Cos(a))
		y := float32(cy + r*math.Sin(a))
		if i == 0 {
			c.ras.MoveTo(x, y)
		} else {
			c.ras.LineTo(x, y)
		}
	}
	c.ras.ClosePath()
	c.empty = false
}

// Fill draws the current path with col and starts a new one.
func (c *Canvas) Fill(col color.NRGBA) {
	if c.empty {
		return
	}
	if col.A > 0 {
		c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
	}
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	c.empty = true
}

// withAlpha returns c with its alpha set from a [0,1] opacity.
func withAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(math.Round(opacity * 255))
	return c
}
