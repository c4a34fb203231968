// Package config loads capviz settings from defaults, an optional
// capviz.yaml, CAPVIZ_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivier-w/capviz/internal/visualizer"
	"github.com/spf13/viper"
)

const EnvPrefix = "CAPVIZ"

// Config is the resolved configuration.
type Config struct {
	FPS            int    `mapstructure:"fps"`
	Mode           string `mapstructure:"mode"`
	Shape          string `mapstructure:"shape"`
	BarWidth       int    `mapstructure:"bar_width"`
	Gap            int    `mapstructure:"gap"`
	CapHeight      int    `mapstructure:"cap_height"`
	CapColor       string `mapstructure:"cap_color"`
	ControlsHeight int    `mapstructure:"controls_height"`
	FFTSize        int    `mapstructure:"fft_size"`
	PixelScale     int    `mapstructure:"pixel_scale"`
	QueueSize      int    `mapstructure:"queue_size"`
	StateFile      string `mapstructure:"state_file"`
	LogLevel       string `mapstructure:"log_level"`
	LogFile        string `mapstructure:"log_file"`
}

// Shapes accepted by the shape key.
const (
	ShapeDirect = "direct"
	ShapeSplit  = "split"
)

// SetDefaults fills every key that nothing else has set.
func SetDefaults(v *viper.Viper) {
	geom := visualizer.DefaultGeometry()
	v.SetDefault("fps", 60)
	v.SetDefault("mode", visualizer.SettleAndStop.String())
	v.SetDefault("shape", ShapeSplit)
	v.SetDefault("bar_width", geom.BarWidth)
	v.SetDefault("gap", geom.Gap)
	v.SetDefault("cap_height", geom.CapHeight)
	v.SetDefault("cap_color", "#ddd")
	v.SetDefault("controls_height", 60)
	v.SetDefault("fft_size", 1024)
	v.SetDefault("pixel_scale", 4)
	v.SetDefault("queue_size", 2)
	v.SetDefault("state_file", DefaultStateFile())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// DefaultStateFile is $XDG_CONFIG_HOME/capviz/state.yaml or the platform
// equivalent.
func DefaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "capviz-state.yaml"
	}
	return filepath.Join(dir, "capviz", "state.yaml")
}

// Setup points v at the config file and environment. An explicit file must
// exist; otherwise capviz.yaml is searched for in the user config directory
// and the working directory.
func Setup(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "capviz"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("capviz")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.FPS < 0 {
		return fmt.Errorf("fps cannot be negative")
	}
	if _, ok := visualizer.ParseMode(c.Mode); !ok {
		return fmt.Errorf("unknown mode %q (want continuous or settle)", c.Mode)
	}
	if c.Shape != ShapeDirect && c.Shape != ShapeSplit {
		return fmt.Errorf("unknown shape %q (want direct or split)", c.Shape)
	}
	if c.BarWidth <= 0 {
		return fmt.Errorf("bar_width must be positive")
	}
	if c.Gap < 0 || c.CapHeight < 0 || c.ControlsHeight < 0 {
		return fmt.Errorf("gap, cap_height and controls_height cannot be negative")
	}
	if _, err := visualizer.ParseHexColor(c.CapColor); err != nil {
		return fmt.Errorf("cap_color: %w", err)
	}
	if c.PixelScale < 1 {
		return fmt.Errorf("pixel_scale must be at least 1")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1")
	}
	return nil
}

// ModeValue returns the parsed scheduler mode. Call after Validate.
func (c *Config) ModeValue() visualizer.Mode {
	m, _ := visualizer.ParseMode(c.Mode)
	return m
}

// Geometry returns the renderer geometry. Call after Validate.
func (c *Config) Geometry() visualizer.Geometry {
	capColor, err := visualizer.ParseHexColor(c.CapColor)
	if err != nil {
		capColor = visualizer.DefaultGeometry().CapColor
	}
	return visualizer.Geometry{
		BarWidth:  c.BarWidth,
		Gap:       c.Gap,
		CapHeight: c.CapHeight,
		CapColor:  capColor,
	}
}
