package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/MeKo-Tech/signalglobe/assets"
	"github.com/MeKo-Tech/signalglobe/internal/frames"
	"github.com/MeKo-Tech/signalglobe/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo page and stream frames to browsers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Int("fps", 30, "Target frames per second for WebSocket streams")
	serveCmd.Flags().Int("max-concurrent-renders", runtime.NumCPU(), "Max concurrent frame renders (default: number of CPUs)")
	serveCmd.Flags().Duration("render-timeout", 10*time.Second, "Timeout per frame render")
	serveCmd.Flags().Int("width", 640, "Default frame width")
	serveCmd.Flags().Int("height", 480, "Default frame height")
	serveCmd.Flags().Int("max-width", 1920, "Largest frame width a client may request")
	serveCmd.Flags().Int("max-height", 1080, "Largest frame height a client may request")
	serveCmd.Flags().String("png-compression", "speed", "PNG compression (default, speed, best, none)")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served frames")
	serveCmd.Flags().String("archive", "", "Frame archive written by render --format archive, served under /archive/")

	mustBind(serveCmd, "serve.addr", "addr")
	mustBind(serveCmd, "serve.fps", "fps")
	mustBind(serveCmd, "serve.max_concurrent_renders", "max-concurrent-renders")
	mustBind(serveCmd, "serve.render_timeout", "render-timeout")
	mustBind(serveCmd, "serve.width", "width")
	mustBind(serveCmd, "serve.height", "height")
	mustBind(serveCmd, "serve.max_width", "max-width")
	mustBind(serveCmd, "serve.max_height", "max-height")
	mustBind(serveCmd, "serve.png_compression", "png-compression")
	mustBind(serveCmd, "serve.cache_control", "cache-control")
	mustBind(serveCmd, "serve.archive", "archive")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	seed := viper.GetInt64("seed")

	level, err := frames.ParseCompression(viper.GetString("serve.png_compression"))
	if err != nil {
		return err
	}
	field, err := loadField(seed)
	if err != nil {
		return err
	}
	globes, err := loadGlobes()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Field:                field,
		Globe:                globes,
		Seed:                 seed,
		FPS:                  viper.GetInt("serve.fps"),
		MaxConcurrentRenders: viper.GetInt("serve.max_concurrent_renders"),
		RenderTimeout:        viper.GetDuration("serve.render_timeout"),
		DefaultWidth:         viper.GetInt("serve.width"),
		DefaultHeight:        viper.GetInt("serve.height"),
		MaxWidth:             viper.GetInt("serve.max_width"),
		MaxHeight:            viper.GetInt("serve.max_height"),
		Compression:          level,
		CacheControl:         viper.GetString("serve.cache_control"),
		DemoFS:               assets.Web(),
		ArchivePath:          viper.GetString("serve.archive"),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, addr)
}
