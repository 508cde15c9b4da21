package cmd

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/MeKo-Tech/signalglobe/internal/archive"
	"github.com/MeKo-Tech/signalglobe/internal/frames"
	"github.com/MeKo-Tech/signalglobe/internal/pipeline"
	"github.com/MeKo-Tech/signalglobe/internal/worker"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render demo frames to disk",
	Long: `Render a fixed number of frames of one demo (noise, spike or point) into a
PNG sequence, an animated GIF or a SQLite frame archive.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("demo", "d", pipeline.DemoSpike, "Demo to render: noise, spike or point")
	renderCmd.Flags().IntP("frames", "n", 300, "Number of frames to render")
	renderCmd.Flags().Int("fps", 30, "Frames per second of the animation clock")
	renderCmd.Flags().Int("width", 640, "Frame width in pixels")
	renderCmd.Flags().Int("height", 480, "Frame height in pixels")

	renderCmd.Flags().String("format", frames.FormatPNG, "Output format: png, gif or archive")
	renderCmd.Flags().StringP("output", "o", "./frames", "Output directory (png) or file (gif, archive)")
	renderCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	renderCmd.Flags().String("background", "#000000", "Background color for GIF output, which has no partial alpha")

	renderCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	renderCmd.Flags().Bool("progress", true, "Show progress bar")
	renderCmd.Flags().Bool("force", false, "Re-render frames that already exist")
	renderCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some frames fail")

	mustBind(renderCmd, "render.demo", "demo")
	mustBind(renderCmd, "render.frames", "frames")
	mustBind(renderCmd, "render.fps", "fps")
	mustBind(renderCmd, "render.width", "width")
	mustBind(renderCmd, "render.height", "height")
	mustBind(renderCmd, "render.format", "format")
	mustBind(renderCmd, "render.output", "output")
	mustBind(renderCmd, "render.png_compression", "png-compression")
	mustBind(renderCmd, "render.background", "background")
	mustBind(renderCmd, "render.workers", "workers")
	mustBind(renderCmd, "render.progress", "progress")
	mustBind(renderCmd, "render.force", "force")
	mustBind(renderCmd, "render.allow_failures", "allow-failures")
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	demo := viper.GetString("render.demo")
	frameCount := viper.GetInt("render.frames")
	fps := viper.GetInt("render.fps")
	width := viper.GetInt("render.width")
	height := viper.GetInt("render.height")
	format := viper.GetString("render.format")
	output := viper.GetString("render.output")
	workers := viper.GetInt("render.workers")
	showProgress := viper.GetBool("render.progress")
	force := viper.GetBool("render.force")
	allowFailures := viper.GetBool("render.allow_failures")
	seed := viper.GetInt64("seed")

	if frameCount <= 0 {
		return fmt.Errorf("--frames must be positive, got %d", frameCount)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	level, err := frames.ParseCompression(viper.GetString("render.png_compression"))
	if err != nil {
		return err
	}
	bg, err := parseBackground(viper.GetString("render.background"))
	if err != nil {
		return err
	}

	opts := pipeline.SceneOptions{Seed: seed, FPS: fps, Frames: frameCount}
	if demo == pipeline.DemoNoise {
		if opts.Field, err = loadField(seed); err != nil {
			return err
		}
	} else {
		g, err := loadGlobe(demo)
		if err != nil {
			return err
		}
		opts.Globe = &g
	}

	scene, err := pipeline.NewScene(demo, opts)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}

	out, err := frames.Open(frames.Options{
		Format:      format,
		Path:        output,
		FPS:         fps,
		Compression: level,
		Background:  bg,
		Metadata: archive.Metadata{
			Name:        "signalglobe-" + demo,
			Demo:        demo,
			Description: "signalglobe " + demo + " animation",
			Version:     "1.0",
			Width:       width,
			Height:      height,
			FPS:         fps,
			Frames:      frameCount,
			Seed:        seed,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	gen, err := pipeline.NewGenerator(scene, out, width, height, logger)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to init generator: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting render",
		"demo", demo,
		"frames", frameCount,
		"fps", fps,
		"size", fmt.Sprintf("%dx%d", width, height),
		"format", format,
		"output", output,
		"workers", workers,
	)

	tasks := worker.Tasks(frameCount, force)
	progress := worker.NewProgress(len(tasks), fps, format+" "+output, showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  gen,
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Frame render failed", "frame", r.Task.Index, "error", r.Err)
		}
	}
	logger.Info(progress.Summary())

	// Close even after failures so archives flush and GIFs keep what rendered.
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	if failedCount > 0 {
		if !allowFailures {
			return fmt.Errorf("%d frames failed to render", failedCount)
		}
		logger.Warn("Some frames failed to render, but continuing due to --allow-failures flag", "failed_count", failedCount)
	}

	logger.Info("Render complete", "output", output)
	return nil
}

// parseBackground parses a hex color into an opaque NRGBA.
func parseBackground(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid background color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
