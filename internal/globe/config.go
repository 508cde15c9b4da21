// Package globe simulates the rotating wireframe globe and the transient
// signal markers that appear on its surface.
package globe

import (
	"fmt"
	"time"
)

// Variant selects a marker style and its timing constants.
type Variant string

const (
	// VariantSpike draws markers as line spikes with a glowing tip.
	VariantSpike Variant = "spike"
	// VariantPoint draws markers as small spheres sitting on the surface.
	VariantPoint Variant = "point"
)

// Config holds the geometry and timing of one globe variant.
type Config struct {
	Variant Variant

	Radius       float64 // wireframe sphere
	InnerRadius  float64 // translucent shade sphere
	MarkerRadius float64 // marker base distance from the center

	Lifetime   time.Duration
	FirstSpawn time.Duration
	SpawnMin   time.Duration
	SpawnMax   time.Duration

	FadeIn  float64 // fraction of the lifetime
	FadeOut float64 // fraction of the lifetime

	SpikeMin float64
	SpikeMax float64
	TipSize  float64

	// Per frame rotation and pulse steps.
	AutoRotation float64
	PulseStep    float64
	PulseAmount  float64

	DragSensitivity float64
	DragDamping     float64
	FreeDamping     float64
}

// SpikeConfig is the line-spike globe.
func SpikeConfig() Config {
	return Config{
		Variant:         VariantSpike,
		Radius:          2.5,
		InnerRadius:     2.48,
		MarkerRadius:    2.52,
		Lifetime:        8 * time.Second,
		FirstSpawn:      time.Second,
		SpawnMin:        3 * time.Second,
		SpawnMax:        8 * time.Second,
		FadeIn:          0.15,
		FadeOut:         0.15,
		SpikeMin:        0.3,
		SpikeMax:        0.7,
		TipSize:         0.02,
		AutoRotation:    0.002,
		PulseStep:       0.04,
		PulseAmount:     0.2,
		DragSensitivity: 0.005,
		DragDamping:     0.95,
		FreeDamping:     0.98,
	}
}

// PointConfig is the point-marker globe: no spike, larger dots, quicker
// turnover.
func PointConfig() Config {
	c := SpikeConfig()
	c.Variant = VariantPoint
	c.MarkerRadius = 2.51
	c.Lifetime = 6 * time.Second
	c.FirstSpawn = 500 * time.Millisecond
	c.SpawnMin = time.Second
	c.SpawnMax = 3 * time.Second
	c.FadeIn = 0.2
	c.FadeOut = 0.2
	c.SpikeMin = 0
	c.SpikeMax = 0
	c.TipSize = 0.05
	c.PulseStep = 0.06
	c.PulseAmount = 0.15
	return c
}

// ConfigFor returns the preset for a variant name.
func ConfigFor(name string) (Config, error) {
	switch Variant(name) {
	case VariantSpike:
		return SpikeConfig(), nil
	case VariantPoint:
		return PointConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown globe variant %q (want %s or %s)", name, VariantSpike, VariantPoint)
	}
}

// Validate checks that the timing and ramp constants are usable.
func (c Config) Validate() error {
	if c.Radius <= 0 || c.MarkerRadius <= 0 {
		return fmt.Errorf("radii must be positive")
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("marker lifetime must be positive")
	}
	if c.SpawnMin <= 0 || c.SpawnMax < c.SpawnMin {
		return fmt.Errorf("spawn interval [%s,%s) is invalid", c.SpawnMin, c.SpawnMax)
	}
	if c.FadeIn <= 0 || c.FadeOut <= 0 || c.FadeIn+c.FadeOut > 1 {
		return fmt.Errorf("fade fractions %.2f/%.2f must be positive and sum to at most 1", c.FadeIn, c.FadeOut)
	}
	if c.SpikeMax < c.SpikeMin {
		return fmt.Errorf("spike height range [%.2f,%.2f) is invalid", c.SpikeMin, c.SpikeMax)
	}
	return nil
}
