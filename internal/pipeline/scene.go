package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/MeKo-Tech/signalglobe/internal/render"
)

// Demo names.
const (
	DemoNoise = "noise"
	DemoSpike = string(globe.VariantSpike)
	DemoPoint = string(globe.VariantPoint)
)

// Demos lists every demo name in display order.
var Demos = []string{DemoSpike, DemoPoint, DemoNoise}

// Scene renders the frames of one demo at a fixed frame rate.
type Scene interface {
	Name() string
	// Frames is the number of frames the scene can render, or 0 if unbounded.
	Frames() int
	Elapsed(index int) time.Duration
	RenderFrame(ctx context.Context, index, width, height int) (*image.NRGBA, error)
}

// SceneOptions configures NewScene.
type SceneOptions struct {
	Field  noise.Field
	Globe  *globe.Config // nil uses the demo preset
	Seed   int64
	FPS    int
	Frames int
}

// NewScene builds the scene for a demo name.
func NewScene(demo string, opts SceneOptions) (Scene, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", opts.FPS)
	}

	switch demo {
	case DemoNoise:
		if err := opts.Field.Validate(); err != nil {
			return nil, fmt.Errorf("invalid noise field: %w", err)
		}
		return &NoiseScene{Field: opts.Field, FPS: opts.FPS}, nil
	case DemoSpike, DemoPoint:
		cfg, err := globe.ConfigFor(demo)
		if err != nil {
			return nil, err
		}
		if opts.Globe != nil {
			cfg = *opts.Globe
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid globe config: %w", err)
		}
		if opts.Frames <= 0 {
			return nil, fmt.Errorf("globe scenes need a frame count, got %d", opts.Frames)
		}
		return NewGlobeScene(cfg, opts.Seed, opts.FPS, opts.Frames), nil
	default:
		return nil, fmt.Errorf("unknown demo %q (want one of %v)", demo, Demos)
	}
}

// NoiseScene renders the noise field. Every frame is independent.
type NoiseScene struct {
	Field noise.Field
	FPS   int
}

func (s *NoiseScene) Name() string { return DemoNoise }

func (s *NoiseScene) Frames() int { return 0 }

func (s *NoiseScene) Elapsed(index int) time.Duration { return globe.FrameTime(index, s.FPS) }

func (s *NoiseScene) RenderFrame(ctx context.Context, index, width, height int) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return render.NoiseFrame(s.Field, width, height, s.Elapsed(index).Seconds())
}

// GlobeScene renders a globe whose simulation is stepped up front, so frames
// can be drawn in any order and in parallel.
type GlobeScene struct {
	renderer *render.GlobeRenderer
	states   []globe.State
	variant  globe.Variant
	fps      int
}

// NewGlobeScene simulates frames steps of a globe started at the Unix epoch.
func NewGlobeScene(cfg globe.Config, seed int64, fps, frames int) *GlobeScene {
	return &GlobeScene{
		renderer: render.NewGlobeRenderer(),
		states:   globe.Simulate(cfg, seed, fps, frames, time.Unix(0, 0)),
		variant:  cfg.Variant,
		fps:      fps,
	}
}

func (s *GlobeScene) Name() string { return string(s.variant) }

func (s *GlobeScene) Frames() int { return len(s.states) }

func (s *GlobeScene) Elapsed(index int) time.Duration { return globe.FrameTime(index, s.fps) }

// State returns the simulated state of a frame.
func (s *GlobeScene) State(index int) (globe.State, error) {
	if index < 0 || index >= len(s.states) {
		return globe.State{}, fmt.Errorf("frame %d out of range [0,%d)", index, len(s.states))
	}
	return s.states[index], nil
}

func (s *GlobeScene) RenderFrame(ctx context.Context, index, width, height int) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := s.State(index)
	if err != nil {
		return nil, err
	}
	return s.renderer.Frame(st, width, height)
}
