package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientDeterministic(t *testing.T) {
	g := Gradient{}
	points := [][3]float64{{0.3, 1.7, 2.2}, {-4.1, 9.9, 0.01}, {123.456, -78.9, 5.5}}

	for _, p := range points {
		a := g.Noise3D(p[0], p[1], p[2])
		b := g.Noise3D(p[0], p[1], p[2])
		assert.Equal(t, a, b, "noise at %v changed between calls", p)
	}
}

func TestGradientZeroOnLattice(t *testing.T) {
	g := Gradient{}
	for i := -3; i <= 3; i++ {
		for j := -3; j <= 3; j++ {
			n := g.Noise3D(float64(i), float64(j), float64(i+j))
			assert.InDelta(t, 0, n, 1e-12, "lattice point (%d,%d,%d)", i, j, i+j)
		}
	}
}

func TestGradientBounded(t *testing.T) {
	g := Gradient{Period: 10}
	rng := rand.New(rand.NewSource(42))

	minV, maxV := math.Inf(1), math.Inf(-1)
	for i := 0; i < 200000; i++ {
		x := rng.Float64()*200 - 100
		y := rng.Float64()*200 - 100
		z := rng.Float64() * 10
		n := g.Noise3D(x, y, z)
		minV = math.Min(minV, n)
		maxV = math.Max(maxV, n)
	}

	assert.GreaterOrEqual(t, minV, -1.05)
	assert.LessOrEqual(t, maxV, 1.05)
	// The field should actually use a good part of its range.
	assert.Less(t, minV, -0.3)
	assert.Greater(t, maxV, 0.3)
}

func TestGradientComponentsInRange(t *testing.T) {
	g := Gradient{}
	for i := -20; i < 20; i++ {
		gx, gy, gz := g.GradientAt(i, i*7, i*13)
		for _, c := range []float64{gx, gy, gz} {
			require.GreaterOrEqual(t, c, -1.0)
			require.Less(t, c, 1.0)
		}
	}
}

func TestGradientPeriodicInZ(t *testing.T) {
	g := Gradient{Period: 10}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		x := rng.Float64() * 50
		y := rng.Float64() * 50
		z := rng.Float64() * 10
		assert.InDelta(t, g.Noise3D(x, y, z), g.Noise3D(x, y, z+10), 1e-9)
	}
}

func TestFadeEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, Fade(0))
	assert.Equal(t, 1.0, Fade(1))
	assert.InDelta(t, 0.5, Fade(0.5), 1e-12)

	// Zero first derivative at the ends.
	const h = 1e-6
	assert.InDelta(t, 0, (Fade(h)-Fade(0))/h, 1e-4)
	assert.InDelta(t, 0, (Fade(1)-Fade(1-h))/h, 1e-4)
}

func TestNewSource(t *testing.T) {
	for _, name := range []string{"", SourceGradient, SourcePerlin, SourceSimplex} {
		src, err := NewSource(name, 1337, 10)
		require.NoError(t, err, "source %q", name)

		n := src.Noise3D(1.25, 2.5, 3.75)
		assert.False(t, math.IsNaN(n), "source %q returned NaN", name)
		assert.LessOrEqual(t, math.Abs(n), 1.5, "source %q out of range", name)
	}

	_, err := NewSource("worley", 1, 10)
	assert.Error(t, err)
}

func TestSeededSourcesAreReproducible(t *testing.T) {
	a := NewSimplex(99)
	b := NewSimplex(99)
	assert.Equal(t, a.Noise3D(0.1, 0.2, 0.3), b.Noise3D(0.1, 0.2, 0.3))

	p := NewPerlin(99)
	q := NewPerlin(99)
	assert.Equal(t, p.Noise3D(0.1, 0.2, 0.3), q.Noise3D(0.1, 0.2, 0.3))
}
