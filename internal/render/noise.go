package render

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/dgravesa/go-parallel/parallel"
)

// NoiseFrame shades every pixel of a w×h frame from the field at elapsed
// seconds. Rows are shaded in parallel.
func NoiseFrame(f noise.Field, w, h int, elapsed float64) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid noise field: %w", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	parallel.For(h, func(y, _ int) {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		py := float64(y) + 0.5
		for x := 0; x < w; x++ {
			c := f.Shade(float64(x)+0.5, py, w, h, elapsed)
			i := x * 4
			row[i+0] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = c.A
		}
	})
	return img, nil
}
