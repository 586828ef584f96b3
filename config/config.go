// Package config loads operator settings from a TOML file
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/lixenwraith/inktrail/constants"
	"github.com/lixenwraith/inktrail/hand"
	"github.com/lixenwraith/inktrail/ink"
	"github.com/lixenwraith/inktrail/network"
)

// Duration decodes TOML strings such as "6s" or "250ms"
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Trail tunes the buffer and fade scheduler
type Trail struct {
	WindowCapacity   int      `toml:"window_capacity"`
	MinWindowDepth   int      `toml:"min_window_depth"`
	SegmentLookback  int      `toml:"segment_lookback"`
	InterpolationGap float64  `toml:"interpolation_gap"`
	FadeHorizon      Duration `toml:"fade_horizon"`
	PinchThreshold   float64  `toml:"pinch_threshold"`
}

// Surface is the logical drawing area in pixels
type Surface struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Capture configures the recognizer link
// An empty Address selects the pointer source
type Capture struct {
	Address           string   `toml:"address"`
	ConnectTimeout    Duration `toml:"connect_timeout"`
	ReadyTimeout      Duration `toml:"ready_timeout"`
	HeartbeatInterval Duration `toml:"heartbeat_interval"`
}

// Render controls drawing
type Render struct {
	InkColor        string   `toml:"ink_color"`
	BackgroundColor string   `toml:"background_color"`
	LineWidth       float64  `toml:"line_width"`
	FrameInterval   Duration `toml:"frame_interval"`
	StatusBar       bool     `toml:"status_bar"`
}

// Audio toggles feedback cues
type Audio struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

// Config is the full operator configuration
type Config struct {
	Trail   Trail   `toml:"trail"`
	Surface Surface `toml:"surface"`
	Capture Capture `toml:"capture"`
	Render  Render  `toml:"render"`
	Audio   Audio   `toml:"audio"`
}

// Default returns the stock configuration
func Default() *Config {
	link := network.DefaultConfig()
	return &Config{
		Trail: Trail{
			WindowCapacity:   constants.WindowCapacity,
			MinWindowDepth:   constants.MinWindowDepth,
			SegmentLookback:  constants.SegmentLookback,
			InterpolationGap: constants.InterpolationGap,
			FadeHorizon:      Duration(constants.FadeHorizon),
			PinchThreshold:   constants.PinchThreshold,
		},
		Surface: Surface{
			Width:  constants.SurfaceWidth,
			Height: constants.SurfaceHeight,
		},
		Capture: Capture{
			Address:           "",
			ConnectTimeout:    Duration(link.ConnectTimeout),
			ReadyTimeout:      Duration(10 * time.Second),
			HeartbeatInterval: Duration(link.HeartbeatInterval),
		},
		Render: Render{
			InkColor:        "#f5f5f0",
			BackgroundColor: "#101014",
			LineWidth:       constants.LineWidth,
			FrameInterval:   Duration(constants.FrameUpdateInterval),
			StatusBar:       true,
		},
		Audio: Audio{
			Enabled: false,
			Volume:  0.4,
		},
	}
}

// Load reads path over the defaults
// A missing file is not an error when optional is set
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if err := Decode(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML data into cfg and validates the result
// Keys absent from data keep their current values
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrap(err, "decode")
	}
	return cfg.Validate()
}

// Encode renders cfg as TOML, used by -print-config
func Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate rejects settings the trail cannot run with
func (c *Config) Validate() error {
	t := c.Trail
	switch {
	case t.WindowCapacity < 1:
		return errors.Errorf("trail.window_capacity must be positive, got %d", t.WindowCapacity)
	case t.SegmentLookback < 1 || t.SegmentLookback > t.WindowCapacity:
		return errors.Errorf("trail.segment_lookback must be in [1, %d], got %d", t.WindowCapacity, t.SegmentLookback)
	case t.MinWindowDepth < t.SegmentLookback || t.MinWindowDepth > t.WindowCapacity:
		return errors.Errorf("trail.min_window_depth must be in [%d, %d], got %d", t.SegmentLookback, t.WindowCapacity, t.MinWindowDepth)
	case t.InterpolationGap <= 0:
		return errors.Errorf("trail.interpolation_gap must be positive, got %v", t.InterpolationGap)
	case t.FadeHorizon <= 0:
		return errors.Errorf("trail.fade_horizon must be positive, got %v", time.Duration(t.FadeHorizon))
	case t.PinchThreshold <= 0 || t.PinchThreshold >= 1:
		return errors.Errorf("trail.pinch_threshold must be in (0, 1), got %v", t.PinchThreshold)
	}

	if c.Surface.Width < 1 || c.Surface.Height < 1 || c.Surface.Width > 0xffff || c.Surface.Height > 0xffff {
		return errors.Errorf("surface must be between 1x1 and 65535x65535, got %dx%d", c.Surface.Width, c.Surface.Height)
	}

	if c.Render.LineWidth <= 0 {
		return errors.Errorf("render.line_width must be positive, got %v", c.Render.LineWidth)
	}
	if c.Render.FrameInterval <= 0 {
		return errors.Errorf("render.frame_interval must be positive, got %v", time.Duration(c.Render.FrameInterval))
	}
	if _, err := colorful.Hex(c.Render.InkColor); err != nil {
		return errors.Wrap(err, "render.ink_color")
	}
	if _, err := colorful.Hex(c.Render.BackgroundColor); err != nil {
		return errors.Wrap(err, "render.background_color")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return errors.Errorf("audio.volume must be in [0, 1], got %v", c.Audio.Volume)
	}
	if c.Capture.ReadyTimeout <= 0 {
		return errors.Errorf("capture.ready_timeout must be positive, got %v", time.Duration(c.Capture.ReadyTimeout))
	}
	return nil
}

// SurfaceSize returns the drawing surface
func (c *Config) SurfaceSize() hand.Surface {
	return hand.Surface{Width: float64(c.Surface.Width), Height: float64(c.Surface.Height)}
}

// TrailConfig converts to the ink package configuration
func (c *Config) TrailConfig() ink.Config {
	return ink.Config{
		WindowCapacity:   c.Trail.WindowCapacity,
		MinWindowDepth:   c.Trail.MinWindowDepth,
		SegmentLookback:  c.Trail.SegmentLookback,
		InterpolationGap: c.Trail.InterpolationGap,
		FadeHorizon:      time.Duration(c.Trail.FadeHorizon),
		PinchThreshold:   c.Trail.PinchThreshold,
		Surface:          c.SurfaceSize(),
	}
}

// NetworkConfig converts to the recognizer link configuration
func (c *Config) NetworkConfig() *network.Config {
	n := network.ClientConfig(c.Capture.Address)
	if c.Capture.ConnectTimeout > 0 {
		n.ConnectTimeout = time.Duration(c.Capture.ConnectTimeout)
	}
	if c.Capture.HeartbeatInterval > 0 {
		n.HeartbeatInterval = time.Duration(c.Capture.HeartbeatInterval)
	}
	return n
}
