package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/lane"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "LANE_MCP_CONFIG"

// Default values. The source quad and output size describe a 4K dashcam
// mounted at the windshield center; the windows cover the bottom band of the
// resulting 640×480 bird's-eye view.
var (
	defaultSourceQuad = imaging.Quad{
		{X: 1380, Y: 1090},
		{X: 2280, Y: 1090},
		{X: 3180, Y: 1740},
		{X: 0, Y: 1740},
	}
	defaultLeftWindow  = lane.Window{X: 0, Y: 420, Width: 180, Height: 60}
	defaultRightWindow = lane.Window{X: 480, Y: 420, Width: 160, Height: 60}
)

const (
	defaultOutputWidth      = 640
	defaultOutputHeight     = 480
	defaultProgressInterval = 50
)

// Config holds the lane detection settings. Every field is optional; a nil
// field falls back to its default through the matching Get* method, so
// partial config files are safe.
type Config struct {
	// Perspective
	SourceQuad   *imaging.Quad `json:"source_quad,omitempty"` // top-left, top-right, bottom-right, bottom-left
	OutputWidth  *int          `json:"output_width,omitempty"`
	OutputHeight *int          `json:"output_height,omitempty"`

	// Tracker start windows, in bird's-eye coordinates
	LeftWindow  *lane.Window `json:"left_window,omitempty"`
	RightWindow *lane.Window `json:"right_window,omitempty"`

	// Binarization
	BinarizeMode *string  `json:"binarize_mode,omitempty"` // "white" or "edges"
	WhiteLevel   *uint8   `json:"white_level,omitempty"`
	BlurSigma    *float64 `json:"blur_sigma,omitempty"`
	KernelSize   *int     `json:"kernel_size,omitempty"`
	Level        *uint8   `json:"level,omitempty"`
	EdgeLow      *int     `json:"edge_low,omitempty"`
	EdgeHigh     *int     `json:"edge_high,omitempty"`

	// Overlay
	LeftColor  *string  `json:"left_color,omitempty"`
	RightColor *string  `json:"right_color,omitempty"`
	FillColor  *string  `json:"fill_color,omitempty"` // "" disables the fill
	LineWidth  *float64 `json:"line_width,omitempty"`
	FillWeight *float64 `json:"fill_weight,omitempty"`

	// Batch processing
	ProgressInterval *int `json:"progress_interval,omitempty"` // frames between debug progress lines
}

// Default returns an empty Config; every getter yields its default.
func Default() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file.
// The file must have a .json extension and be at most 1 MiB. Fields omitted
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv loads the file named by LANE_MCP_CONFIG, or returns the defaults
// when the variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the effective configuration, defaults included.
func (c *Config) Validate() error {
	w, h := c.GetOutputSize()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("output size must be positive, got %dx%d", w, h)
	}

	view := image.Rect(0, 0, w, h)
	if err := c.GetLeftWindow().Validate(view); err != nil {
		return fmt.Errorf("left_window: %w", err)
	}
	if err := c.GetRightWindow().Validate(view); err != nil {
		return fmt.Errorf("right_window: %w", err)
	}

	if err := c.GetBinarizeOptions().Validate(); err != nil {
		return err
	}

	if c.LineWidth != nil && *c.LineWidth < 0 {
		return fmt.Errorf("line_width must be non-negative, got %g", *c.LineWidth)
	}
	if c.FillWeight != nil && (*c.FillWeight < 0 || *c.FillWeight > 1) {
		return fmt.Errorf("fill_weight must be between 0 and 1, got %g", *c.FillWeight)
	}
	if c.ProgressInterval != nil && *c.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval must be positive, got %d", *c.ProgressInterval)
	}
	return nil
}

// GetSourceQuad returns the camera-frame quadrilateral that maps onto the
// bird's-eye view.
func (c *Config) GetSourceQuad() imaging.Quad {
	if c.SourceQuad == nil {
		return defaultSourceQuad
	}
	return *c.SourceQuad
}

// GetOutputSize returns the bird's-eye view dimensions.
func (c *Config) GetOutputSize() (width, height int) {
	width, height = defaultOutputWidth, defaultOutputHeight
	if c.OutputWidth != nil {
		width = *c.OutputWidth
	}
	if c.OutputHeight != nil {
		height = *c.OutputHeight
	}
	return width, height
}

func (c *Config) GetLeftWindow() lane.Window {
	if c.LeftWindow == nil {
		return defaultLeftWindow
	}
	return *c.LeftWindow
}

func (c *Config) GetRightWindow() lane.Window {
	if c.RightWindow == nil {
		return defaultRightWindow
	}
	return *c.RightWindow
}

// GetBinarizeOptions overlays the binarization fields on
// imaging.DefaultBinarizeOptions.
func (c *Config) GetBinarizeOptions() imaging.BinarizeOptions {
	opts := imaging.DefaultBinarizeOptions()
	if c.BinarizeMode != nil {
		opts.Mode = *c.BinarizeMode
	}
	if c.WhiteLevel != nil {
		opts.WhiteLevel = *c.WhiteLevel
	}
	if c.BlurSigma != nil {
		opts.BlurSigma = *c.BlurSigma
	}
	if c.KernelSize != nil {
		opts.KernelSize = *c.KernelSize
	}
	if c.Level != nil {
		opts.Level = *c.Level
	}
	if c.EdgeLow != nil {
		opts.EdgeLow = *c.EdgeLow
	}
	if c.EdgeHigh != nil {
		opts.EdgeHigh = *c.EdgeHigh
	}
	return opts
}

// GetOverlayStyle overlays the overlay fields on imaging.DefaultOverlayStyle.
func (c *Config) GetOverlayStyle() imaging.OverlayStyle {
	style := imaging.DefaultOverlayStyle()
	if c.LeftColor != nil {
		style.LeftColor = *c.LeftColor
	}
	if c.RightColor != nil {
		style.RightColor = *c.RightColor
	}
	if c.FillColor != nil {
		style.FillColor = *c.FillColor
	}
	if c.LineWidth != nil {
		style.LineWidth = *c.LineWidth
	}
	if c.FillWeight != nil {
		style.FillWeight = *c.FillWeight
	}
	return style
}

// GetProgressInterval returns how many frames pass between progress log
// lines in debug mode.
func (c *Config) GetProgressInterval() int {
	if c.ProgressInterval == nil {
		return defaultProgressInterval
	}
	return *c.ProgressInterval
}
