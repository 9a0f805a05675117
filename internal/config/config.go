// Package config holds the render settings shared by the command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths. Relative paths are taken against BaseDir.
	BaseDir    string `yaml:"base_dir"`
	Scene      string `yaml:"scene"`
	TextureDir string `yaml:"texture_dir"`
	OutputDir  string `yaml:"output_dir"`

	// Render settings
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	Supersample int `yaml:"supersample"`
	Margin      int `yaml:"margin"` // pixels, 16 when unset
	Workers     int `yaml:"workers"`

	// Frames is how many ticks are rendered, starting at StartTick.
	Frames    int    `yaml:"frames"`
	StartTick uint64 `yaml:"start_tick"`

	Camera Camera `yaml:"camera"`

	// Despeckle drops opaque islands smaller than this share of the largest
	// one; zero keeps every pixel.
	Despeckle float64 `yaml:"despeckle"`
	// Background is an optional #rrggbb colour the frames are flattened on.
	Background string `yaml:"background"`
}

// Camera orients the view.
type Camera struct {
	Yaw         float64 `yaml:"yaw"`
	Pitch       float64 `yaml:"pitch"`
	Perspective bool    `yaml:"perspective"`
	FOV         float64 `yaml:"fov"`
}

// Load reads a YAML or JSON config file. Fields not set in the file keep
// their zero values; BaseDir defaults to the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene      string
	TextureDir string
	OutputDir  string
	Size       int
	Frames     int
	Workers    int
}

// Resolve applies flags, resolves relative paths and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Size > 0 {
		c.Width, c.Height = flags.Size, flags.Size
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	c.Scene = c.abs(c.Scene)
	c.TextureDir = c.abs(c.TextureDir)
	c.OutputDir = c.abs(c.OutputDir)

	if c.TextureDir == "" && c.Scene != "" {
		c.TextureDir = filepath.Dir(c.Scene)
	}

	if c.Width <= 0 {
		c.Width = 256
	}
	if c.Height <= 0 {
		c.Height = c.Width
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Margin <= 0 {
		c.Margin = 16
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Ticks lists the ticks to render.
func (c *Config) Ticks() []uint64 {
	ticks := make([]uint64, c.Frames)
	for i := range ticks {
		ticks[i] = c.StartTick + uint64(i)
	}
	return ticks
}
