package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Source names accepted by NewSource.
const (
	SourceGradient = "gradient"
	SourcePerlin   = "perlin"
	SourceSimplex  = "simplex"
)

// Perlin adapts a permutation-table Perlin generator. Unlike Gradient it is
// seeded and not periodic in z, so the time loop shows a seam at wraparound.
type Perlin struct {
	p *perlin.Perlin
}

// NewPerlin creates a single-octave Perlin source.
func NewPerlin(seed int64) *Perlin {
	return &Perlin{p: perlin.NewPerlin(2.0, 2.0, 1, seed)}
}

func (s *Perlin) Noise3D(x, y, z float64) float64 {
	return s.p.Noise3D(x, y, z)
}

// Simplex adapts OpenSimplex noise.
type Simplex struct {
	n opensimplex.Noise
}

// NewSimplex creates an OpenSimplex source.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{n: opensimplex.New(seed)}
}

func (s *Simplex) Noise3D(x, y, z float64) float64 {
	return s.n.Eval3(x, y, z)
}

// NewSource returns the named noise source. period is only honoured by the
// gradient source; seed only by the seeded ones.
func NewSource(name string, seed int64, period int) (Source, error) {
	switch name {
	case "", SourceGradient:
		return Gradient{Period: period}, nil
	case SourcePerlin:
		return NewPerlin(seed), nil
	case SourceSimplex:
		return NewSimplex(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise source %q (want %s, %s or %s)", name, SourceGradient, SourcePerlin, SourceSimplex)
	}
}
