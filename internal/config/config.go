// Package config holds runtime configuration for the calibration canvas.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Extra click policies.
const (
	PolicyIgnore  = "ignore"
	PolicyRestart = "restart"
)

// Environment variable names that override file values.
const (
	EnvConfigPath  = "DIGITIZER_CONFIG"
	EnvMargin      = "DIGITIZER_MARGIN"
	EnvMinHeight   = "DIGITIZER_MIN_HEIGHT"
	EnvExtraClicks = "DIGITIZER_EXTRA_CLICKS"
	EnvDebug       = "DIGITIZER_DEBUG"
)

// Config holds canvas geometry, drawing style and click behaviour.
// Fields may be loaded from a JSON file and overridden by environment variables.
type Config struct {
	Debug bool `json:"debug"`

	// Canvas geometry
	Margin      float64 `json:"margin"`
	MinHeight   int     `json:"min_height"`
	HeightRatio float64 `json:"height_ratio"`
	GridSpacing int     `json:"grid_spacing"`
	GridDash    int     `json:"grid_dash"`

	// Markers
	CrosshairSize  float64 `json:"crosshair_size"`
	CrosshairWidth int     `json:"crosshair_width"`
	LabelOffsetX   float64 `json:"label_offset_x"`
	LabelOffsetY   float64 `json:"label_offset_y"`

	// Colors as hex strings
	BackgroundColor string `json:"background_color"`
	GridColor       string `json:"grid_color"`
	MarkerColor     string `json:"marker_color"`

	Baseline         string `json:"baseline"`
	ExtraClickPolicy string `json:"extra_click_policy"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Margin:           40,
		MinHeight:        400,
		HeightRatio:      0.6,
		GridSpacing:      50,
		GridDash:         5,
		CrosshairSize:    30,
		CrosshairWidth:   2,
		LabelOffsetX:     18,
		LabelOffsetY:     -5,
		BackgroundColor:  "#f8f9fa",
		GridColor:        "#dee2e6",
		MarkerColor:      "#ff0000",
		Baseline:         "0.00",
		ExtraClickPolicy: PolicyIgnore,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.Margin < 0 {
		c.Margin = d.Margin
	}
	if c.MinHeight <= 0 {
		c.MinHeight = d.MinHeight
	}
	if c.HeightRatio <= 0 {
		c.HeightRatio = d.HeightRatio
	}
	if c.GridSpacing <= 0 {
		c.GridSpacing = d.GridSpacing
	}
	if c.GridDash < 0 {
		c.GridDash = d.GridDash
	}
	if c.CrosshairSize <= 0 {
		c.CrosshairSize = d.CrosshairSize
	}
	if c.CrosshairWidth <= 0 {
		c.CrosshairWidth = d.CrosshairWidth
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = d.BackgroundColor
	}
	if c.GridColor == "" {
		c.GridColor = d.GridColor
	}
	if c.MarkerColor == "" {
		c.MarkerColor = d.MarkerColor
	}

	c.ExtraClickPolicy = strings.ToLower(strings.TrimSpace(c.ExtraClickPolicy))
	switch c.ExtraClickPolicy {
	case PolicyIgnore, PolicyRestart:
	case "":
		c.ExtraClickPolicy = d.ExtraClickPolicy
	default:
		bad := c.ExtraClickPolicy
		c.ExtraClickPolicy = d.ExtraClickPolicy
		return fmt.Errorf("unknown extra click policy %q", bad)
	}
	return nil
}

// Load reads configuration from the given JSON file path. If the file does not
// exist it starts from DefaultConfig(). A .env file in the working directory is
// loaded if present, then DIGITIZER_* variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			_ = cfg.Validate()
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		_ = cfg.Validate()
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvMargin); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMargin, err)
		}
		c.Margin = f
	}
	if v, ok := os.LookupEnv(EnvMinHeight); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinHeight, err)
		}
		c.MinHeight = n
	}
	if v, ok := os.LookupEnv(EnvExtraClicks); ok {
		c.ExtraClickPolicy = v
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = b
	}
	return nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
