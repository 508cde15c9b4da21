package noise

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Default endpoint colors of the ramp. Mix(0) yields the "ai" color and
// Mix(1) the "human" color.
const (
	DefaultAIColor    = "#0b3d2e"
	DefaultHumanColor = "#f2a65a"
)

// Field maps pixels and elapsed time to colors.
type Field struct {
	Source Source
	AI     colorful.Color
	Human  colorful.Color

	// GridSize is the number of lattice cells across the viewport height.
	GridSize float64
	// Sharpness biases the distribution toward the extremes, in [0,1).
	Sharpness float64
	// Rate scales elapsed seconds into noise time units.
	Rate float64
	// Period is the length of the time loop in noise time units.
	Period float64
}

// DefaultField returns the reference configuration: a ten unit time loop
// over the periodic gradient source.
func DefaultField() Field {
	ai, _ := colorful.Hex(DefaultAIColor)
	human, _ := colorful.Hex(DefaultHumanColor)
	return Field{
		Source:    Gradient{Period: 10},
		AI:        ai,
		Human:     human,
		GridSize:  4.0,
		Sharpness: 0.35,
		Rate:      0.4,
		Period:    10,
	}
}

// ParseColors sets the ramp endpoints from hex strings.
func (f *Field) ParseColors(ai, human string) error {
	a, err := colorful.Hex(ai)
	if err != nil {
		return fmt.Errorf("invalid ai color %q: %w", ai, err)
	}
	h, err := colorful.Hex(human)
	if err != nil {
		return fmt.Errorf("invalid human color %q: %w", human, err)
	}
	f.AI, f.Human = a, h
	return nil
}

// Validate checks the tunables.
func (f Field) Validate() error {
	if f.Source == nil {
		return errors.New("noise source must be set")
	}
	if f.GridSize <= 0 {
		return fmt.Errorf("grid size must be positive, got %g", f.GridSize)
	}
	if f.Sharpness < 0 || f.Sharpness >= 1 {
		return fmt.Errorf("sharpness must be within [0,1), got %g", f.Sharpness)
	}
	if f.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %g", f.Rate)
	}
	if f.Period <= 0 {
		return fmt.Errorf("period must be positive, got %g", f.Period)
	}
	if g, ok := f.Source.(Gradient); ok && g.Period > 0 && float64(g.Period) != f.Period {
		return fmt.Errorf("gradient lattice period %d does not match field period %g", g.Period, f.Period)
	}
	return nil
}

// Time wraps elapsed seconds into the loop: mod(elapsed*Rate, Period).
func (f Field) Time(elapsed float64) float64 {
	t := math.Mod(elapsed*f.Rate, f.Period)
	if t < 0 {
		t += f.Period
	}
	return t
}

// Sample returns the raw noise value for a pixel of a width x height
// viewport. Both axes are scaled by the height so cells stay square.
func (f Field) Sample(px, py float64, width, height int, elapsed float64) float64 {
	if height <= 0 {
		height = 1
	}
	scale := f.GridSize / float64(height)
	return f.Source.Noise3D(px*scale, py*scale, f.Time(elapsed))
}

// Shade returns the final color of a pixel.
func (f Field) Shade(px, py float64, width, height int, elapsed float64) color.NRGBA {
	n := f.Sample(px, py, width, height, elapsed)
	return f.Mix(Normalize(Sharpen(n, f.Sharpness)))
}

// Mix interpolates linearly between the ai (0) and human (1) endpoints.
func (f Field) Mix(t float64) color.NRGBA {
	r, g, b := f.AI.BlendRgb(f.Human, clamp01(t)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Sharpen applies sign(n) * |n|^(1-s). It keeps the sign and the [-1,1]
// domain and pushes magnitudes toward 1 as s grows.
func Sharpen(n, s float64) float64 {
	if n == 0 {
		return 0
	}
	return math.Copysign(math.Pow(math.Abs(n), 1-s), n)
}

// Normalize maps [-1,1] onto [0,1], clamping overshoot.
func Normalize(n float64) float64 {
	return clamp01((n + 1) * 0.5)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
