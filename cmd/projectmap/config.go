package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds viewer and exporter settings.
type Config struct {
	Width       int     `env:"PROJECTMAP_WIDTH"        envDefault:"1280"`
	Height      int     `env:"PROJECTMAP_HEIGHT"       envDefault:"800"`
	GridSpacing float64 `env:"PROJECTMAP_GRID_SPACING" envDefault:"150"`
	LogLevel    string  `env:"PROJECTMAP_LOG_LEVEL"    envDefault:"info"`
	TagsFile    string  `env:"PROJECTMAP_TAGS"`
	AssetsDir   string  `env:"PROJECTMAP_ASSETS"       envDefault:"."`
	MaxAvatars  int     `env:"PROJECTMAP_MAX_AVATARS"  envDefault:"3"`
	MetricsAddr string  `env:"PROJECTMAP_METRICS_ADDR"`
}

// loadConfig reads Config from the environment.
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
