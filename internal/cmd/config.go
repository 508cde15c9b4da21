package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/spf13/viper"
)

func setFieldDefaults() {
	f := noise.DefaultField()
	viper.SetDefault("noise.source", noise.SourceGradient)
	viper.SetDefault("noise.grid_size", f.GridSize)
	viper.SetDefault("noise.sharpness", f.Sharpness)
	viper.SetDefault("noise.rate", f.Rate)
	viper.SetDefault("noise.period", int(f.Period))
	viper.SetDefault("noise.ai_color", noise.DefaultAIColor)
	viper.SetDefault("noise.human_color", noise.DefaultHumanColor)
}

func setGlobeDefaults() {
	for _, cfg := range []globe.Config{globe.SpikeConfig(), globe.PointConfig()} {
		p := "globe." + string(cfg.Variant) + "."
		viper.SetDefault(p+"lifetime", cfg.Lifetime)
		viper.SetDefault(p+"first_spawn", cfg.FirstSpawn)
		viper.SetDefault(p+"spawn_min", cfg.SpawnMin)
		viper.SetDefault(p+"spawn_max", cfg.SpawnMax)
		viper.SetDefault(p+"fade_in", cfg.FadeIn)
		viper.SetDefault(p+"fade_out", cfg.FadeOut)
		viper.SetDefault(p+"auto_rotation", cfg.AutoRotation)
		viper.SetDefault(p+"tip_size", cfg.TipSize)
	}
}

// loadField builds the noise field from the noise.* keys.
func loadField(seed int64) (noise.Field, error) {
	f := noise.DefaultField()
	period := viper.GetInt("noise.period")

	src, err := noise.NewSource(viper.GetString("noise.source"), seed, period)
	if err != nil {
		return noise.Field{}, err
	}
	f.Source = src
	f.GridSize = viper.GetFloat64("noise.grid_size")
	f.Sharpness = viper.GetFloat64("noise.sharpness")
	f.Rate = viper.GetFloat64("noise.rate")
	f.Period = float64(period)

	if err := f.ParseColors(viper.GetString("noise.ai_color"), viper.GetString("noise.human_color")); err != nil {
		return noise.Field{}, err
	}
	if err := f.Validate(); err != nil {
		return noise.Field{}, fmt.Errorf("invalid noise config: %w", err)
	}
	return f, nil
}

// loadGlobe builds a globe variant from its preset and the globe.<variant>.* keys.
func loadGlobe(variant string) (globe.Config, error) {
	cfg, err := globe.ConfigFor(variant)
	if err != nil {
		return globe.Config{}, err
	}

	p := "globe." + variant + "."
	cfg.Lifetime = viper.GetDuration(p + "lifetime")
	cfg.FirstSpawn = viper.GetDuration(p + "first_spawn")
	cfg.SpawnMin = viper.GetDuration(p + "spawn_min")
	cfg.SpawnMax = viper.GetDuration(p + "spawn_max")
	cfg.FadeIn = viper.GetFloat64(p + "fade_in")
	cfg.FadeOut = viper.GetFloat64(p + "fade_out")
	cfg.AutoRotation = viper.GetFloat64(p + "auto_rotation")
	cfg.TipSize = viper.GetFloat64(p + "tip_size")

	if err := cfg.Validate(); err != nil {
		return globe.Config{}, fmt.Errorf("invalid %s globe config: %w", variant, err)
	}
	return cfg, nil
}

// loadGlobes builds every globe variant.
func loadGlobes() (map[globe.Variant]globe.Config, error) {
	out := make(map[globe.Variant]globe.Config, 2)
	for _, v := range []globe.Variant{globe.VariantSpike, globe.VariantPoint} {
		cfg, err := loadGlobe(string(v))
		if err != nil {
			return nil, err
		}
		out[v] = cfg
	}
	return out, nil
}
