// Package pipeline turns a demo scene into frames on disk.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/signalglobe/internal/frames"
)

// Generator renders single frames of a scene and hands them to a writer.
// It is safe for concurrent use when the writer is.
type Generator struct {
	scene  Scene
	out    frames.Writer
	logger *slog.Logger
	width  int
	height int
}

// NewGenerator prepares a generator for w×h frames.
func NewGenerator(scene Scene, out frames.Writer, width, height int, logger *slog.Logger) (*Generator, error) {
	if scene == nil {
		return nil, fmt.Errorf("scene is required")
	}
	if out == nil {
		return nil, fmt.Errorf("frame writer is required")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %dx%d", width, height)
	}

	return &Generator{
		scene:  scene,
		out:    out,
		width:  width,
		height: height,
		logger: logger,
	}, nil
}

// Generate renders frame index and writes it. Frames already present in a
// PNG directory are skipped unless force is set. The returned path is empty
// for sinks that are not one file per frame.
func (g *Generator) Generate(ctx context.Context, index int, force bool) (string, error) {
	path := ""
	if dir, ok := g.out.(*frames.PNGDir); ok {
		path = dir.Path(index)
		if !force && dir.Exists(index) {
			g.log().Info("Frame already exists; skipping", "scene", g.scene.Name(), "frame", index, "path", path)
			return path, nil
		}
	}

	g.log().Debug("Rendering frame", "scene", g.scene.Name(), "frame", index)
	img, err := g.scene.RenderFrame(ctx, index, g.width, g.height)
	if err != nil {
		return "", fmt.Errorf("failed to render frame %d: %w", index, err)
	}

	err = g.out.WriteFrame(frames.Frame{
		Index:   index,
		Elapsed: g.scene.Elapsed(index),
		Image:   img,
	})
	if err != nil {
		return "", fmt.Errorf("failed to write frame %d: %w", index, err)
	}

	return path, nil
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
