package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/MeKo-Tech/signalglobe/internal/pipeline"
	"github.com/MeKo-Tech/signalglobe/internal/viewer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// backendNotice replaces the animation when no window can be opened.
const backendNotice = "signalglobe: this animation needs a graphics window, which is not available here.\n" +
	"Try `signalglobe serve` and open the page in a browser, or `signalglobe render` to write frames to disk."

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a demo in a desktop window",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("demo", "d", pipeline.DemoSpike, "Demo to show: noise, spike or point")
	watchCmd.Flags().Int("width", 960, "Initial window width")
	watchCmd.Flags().Int("height", 720, "Initial window height")
	watchCmd.Flags().Int("tps", 60, "Updates per second")

	mustBind(watchCmd, "watch.demo", "demo")
	mustBind(watchCmd, "watch.width", "width")
	mustBind(watchCmd, "watch.height", "height")
	mustBind(watchCmd, "watch.tps", "tps")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	seed := viper.GetInt64("seed")
	cfg := viewer.Config{
		Demo:   viper.GetString("watch.demo"),
		Width:  viper.GetInt("watch.width"),
		Height: viper.GetInt("watch.height"),
		TPS:    viper.GetInt("watch.tps"),
		Seed:   seed,
	}

	var err error
	if cfg.Demo == pipeline.DemoNoise {
		cfg.Field, err = loadField(seed)
		if src := viper.GetString("noise.source"); src != "" && src != noise.SourceGradient {
			logger.Debug("The window shader always uses gradient noise", "configured_source", src)
		}
	} else {
		cfg.Globe, err = loadGlobe(cfg.Demo)
	}
	if err != nil {
		return err
	}

	logger.Info("Opening viewer", "demo", cfg.Demo, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	err = viewer.Run(cfg, logger)
	if errors.Is(err, viewer.ErrBackendUnavailable) {
		logger.Debug("Viewer backend unavailable", "error", err)
		fmt.Fprintln(os.Stdout, backendNotice)
		return nil
	}
	return err
}
