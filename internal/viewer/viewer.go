// Package viewer shows the demos in a desktop window.
package viewer

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/MeKo-Tech/signalglobe/internal/noise"
)

// ErrBackendUnavailable is returned by Run when no window can be opened,
// either because the binary was built without a window backend or because
// the backend failed before the first frame.
var ErrBackendUnavailable = errors.New("window backend unavailable")

//go:embed noise.kage
var noiseShader []byte

// NoiseShader returns the Kage source of the noise field.
func NoiseShader() []byte { return noiseShader }

// ShaderError is a shader compile failure with the offending source.
type ShaderError struct {
	Name   string
	Source []byte
	Err    error
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %v", e.Name, e.Err)
}

func (e *ShaderError) Unwrap() error { return e.Err }

// Config configures the window.
type Config struct {
	Demo   string // noise, spike or point
	Title  string
	Width  int
	Height int
	TPS    int
	Seed   int64
	Field  noise.Field
	Globe  globe.Config
}

// Validate checks the demo name and sizes.
func (c Config) Validate() error {
	switch c.Demo {
	case "noise":
		if err := c.Field.Validate(); err != nil {
			return fmt.Errorf("invalid noise field: %w", err)
		}
	case string(globe.VariantSpike), string(globe.VariantPoint):
		if err := c.Globe.Validate(); err != nil {
			return fmt.Errorf("invalid globe config: %w", err)
		}
	default:
		return fmt.Errorf("unknown demo %q", c.Demo)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	return nil
}

// NoiseUniforms returns the shader uniforms for the field at elapsed time.
func NoiseUniforms(f noise.Field, elapsed time.Duration) map[string]any {
	return map[string]any{
		"Time":      float32(f.Time(elapsed.Seconds())),
		"GridSize":  float32(f.GridSize),
		"Sharpness": float32(f.Sharpness),
		"Period":    float32(f.Period),
		"AI":        []float32{float32(f.AI.R), float32(f.AI.G), float32(f.AI.B)},
		"Human":     []float32{float32(f.Human.R), float32(f.Human.G), float32(f.Human.B)},
	}
}
