// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/barcodeplacer/internal/editor"
	"github.com/kpauljoseph/barcodeplacer/internal/pdf"
	"github.com/kpauljoseph/barcodeplacer/internal/presets"
	"github.com/kpauljoseph/barcodeplacer/internal/submission"
)

type Config struct {
	Render struct {
		Scale            float64 `yaml:"scale"`
		DevicePixelRatio float64 `yaml:"device_pixel_ratio"`
		Sharp            bool    `yaml:"sharp"`
		Stitched         bool    `yaml:"stitched"`
	} `yaml:"render"`
	Editor struct {
		Mode          string  `yaml:"mode"`
		BarcodeWidth  float64 `yaml:"barcode_width"`
		BarcodeHeight float64 `yaml:"barcode_height"`
		MinBoxSize    float64 `yaml:"min_box_size"`
	} `yaml:"editor"`
	Viewport struct {
		ContainerWidth float64 `yaml:"container_width"`
	} `yaml:"viewport"`
	Submission struct {
		Policy string `yaml:"policy"`
	} `yaml:"submission"`
	PagePreset string `yaml:"page_preset"`
}

func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault falls back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Render.Scale == 0 {
		c.Render.Scale = pdf.DefaultRenderScale
	}
	if c.Render.DevicePixelRatio == 0 {
		c.Render.DevicePixelRatio = 1
	}
	if c.Editor.Mode == "" {
		c.Editor.Mode = editor.ModeBarcode.String()
	}
	if c.Editor.BarcodeWidth == 0 {
		c.Editor.BarcodeWidth = editor.DefaultBarcodeWidth
	}
	if c.Editor.BarcodeHeight == 0 {
		c.Editor.BarcodeHeight = editor.DefaultBarcodeHeight
	}
	if c.Editor.MinBoxSize == 0 {
		c.Editor.MinBoxSize = editor.DefaultMinBoxSize
	}
	if c.Viewport.ContainerWidth == 0 {
		c.Viewport.ContainerWidth = 800
	}
	if c.Submission.Policy == "" {
		c.Submission.Policy = submission.RequireAny.String()
	}
	if c.PagePreset == "" {
		c.PagePreset = presets.DefaultName
	}
}

func (c *Config) Validate() error {
	if c.Render.Scale <= 0 || c.Render.Scale > pdf.MaxRenderScale {
		return fmt.Errorf("render.scale must be in (0, %g], got %g", pdf.MaxRenderScale, c.Render.Scale)
	}
	if c.Render.DevicePixelRatio < 0 {
		return fmt.Errorf("render.device_pixel_ratio must not be negative, got %g", c.Render.DevicePixelRatio)
	}
	if _, err := editor.ParseMode(c.Editor.Mode); err != nil {
		return err
	}
	if c.Editor.BarcodeWidth < 0 || c.Editor.BarcodeHeight < 0 || c.Editor.MinBoxSize < 0 {
		return errors.New("editor sizes must not be negative")
	}
	if c.Viewport.ContainerWidth < 0 {
		return fmt.Errorf("viewport.container_width must not be negative, got %g", c.Viewport.ContainerWidth)
	}
	if _, err := submission.ParsePolicy(c.Submission.Policy); err != nil {
		return err
	}
	if _, ok := presets.Lookup(c.PagePreset); !ok {
		return fmt.Errorf("unknown page preset %q", c.PagePreset)
	}
	return nil
}

// RenderScale is the scale pages are rasterized at.
func (c *Config) RenderScale() float64 {
	if c.Render.Sharp {
		return pdf.SharpScale(c.Render.Scale, c.Render.DevicePixelRatio)
	}
	return c.Render.Scale
}

func (c *Config) EditorOptions() editor.Options {
	mode, _ := editor.ParseMode(c.Editor.Mode)
	return editor.Options{
		Mode:          mode,
		BarcodeWidth:  c.Editor.BarcodeWidth,
		BarcodeHeight: c.Editor.BarcodeHeight,
		MinBoxSize:    c.Editor.MinBoxSize,
	}
}

func (c *Config) Policy() submission.Policy {
	p, _ := submission.ParsePolicy(c.Submission.Policy)
	return p
}

func (c *Config) Preset() presets.Preset {
	p, ok := presets.Lookup(c.PagePreset)
	if !ok {
		p, _ = presets.Lookup(presets.DefaultName)
	}
	return p
}
