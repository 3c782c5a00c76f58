package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. RAYTRACER_WIDTH
const Prefix = "RAYTRACER"

// Config holds the render defaults. Every field can be overridden from the environment.
type Config struct {
	Scene           string  `envconfig:"SCENE" default:"random"`
	Width           int     `envconfig:"WIDTH" default:"400"`
	AspectRatio     float64 `envconfig:"ASPECT_RATIO" default:"1.7777777777777777"`
	SamplesPerPixel int     `envconfig:"SAMPLES_PER_PIXEL" default:"100"`
	MaxDepth        int     `envconfig:"MAX_DEPTH" default:"50"`
	Seed            int64   `envconfig:"SEED" default:"0"`
	Output          string  `envconfig:"OUTPUT" default:"output/image.png"`
	Port            int     `envconfig:"PORT" default:"8080"`
	LogLevel        string  `envconfig:"LOG_LEVEL" default:"notice"`
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that can never produce an image
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("invalid width %d", c.Width)
	case c.AspectRatio <= 0:
		return fmt.Errorf("invalid aspect ratio %g", c.AspectRatio)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("invalid samples per pixel %d", c.SamplesPerPixel)
	case c.MaxDepth <= 0:
		return fmt.Errorf("invalid max depth %d", c.MaxDepth)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// ResolveSeed returns the configured seed, or a time based one when Seed is 0
func (c Config) ResolveSeed() int64 {
	return ResolveSeed(c.Seed)
}

// ResolveSeed returns seed unchanged unless it is 0, in which case the clock picks one
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
