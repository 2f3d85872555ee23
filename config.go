package diesel2d

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Config is the file form of the renderer options. Empty fields keep the
// defaults.
//
//	app_name      = "hello"
//	validation    = "standard"          # disabled | standard | verbose
//	present_modes = ["mailbox", "fifo"] # immediate | mailbox | fifo | fifo_relaxed
//	device_types  = ["discrete"]        # discrete | integrated | virtual | cpu | other
//
//	[coordinates]
//	kind          = "visible_range"     # none | physical | logical | visible_range | fixed_width
//	visible_range = [0, 0, 900, -600]   # left, top, right, bottom
//	fit           = "center"            # fill | start | center | end
//	center        = [0, 0]
//	x_half_extent = 100
type Config struct {
	AppName      string            `toml:"app_name"`
	Validation   string            `toml:"validation"`
	PresentModes []string          `toml:"present_modes"`
	DeviceTypes  []string          `toml:"device_types"`
	Coordinates  CoordinatesConfig `toml:"coordinates"`
}

type CoordinatesConfig struct {
	Kind         string    `toml:"kind"`
	VisibleRange []float64 `toml:"visible_range"`
	Fit          string    `toml:"fit"`
	Center       []float64 `toml:"center"`
	XHalfExtent  float64   `toml:"x_half_extent"`
}

// LoadConfig reads and decodes a TOML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes TOML config data. Unknown keys are errors.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

// Options converts the config into renderer options. Unknown enum names
// are errors.
func (c *Config) Options() ([]Option, error) {
	var opts []Option
	if c.AppName != "" {
		opts = append(opts, WithAppName(c.AppName))
	}
	if c.Validation != "" {
		mode, err := ParseValidationMode(c.Validation)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithValidation(mode))
	}
	if len(c.PresentModes) > 0 {
		modes := make([]vk.PresentMode, len(c.PresentModes))
		for i, s := range c.PresentModes {
			mode, err := ParsePresentMode(s)
			if err != nil {
				return nil, err
			}
			modes[i] = mode
		}
		opts = append(opts, WithPresentModePriority(modes...))
	}
	if len(c.DeviceTypes) > 0 {
		types := make([]vk.PhysicalDeviceType, len(c.DeviceTypes))
		for i, s := range c.DeviceTypes {
			t, err := ParseDeviceType(s)
			if err != nil {
				return nil, err
			}
			types[i] = t
		}
		opts = append(opts, WithDeviceTypePriority(types...))
	}
	if c.Coordinates.Kind != "" {
		cs, err := c.Coordinates.CoordinateSystem()
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCoordinateSystem(cs))
	}
	return opts, nil
}

// CoordinateSystem builds the coordinate system the section describes.
func (c CoordinatesConfig) CoordinateSystem() (CoordinateSystem, error) {
	kind, err := ParseCoordinateKind(c.Kind)
	if err != nil {
		return CoordinateSystem{}, err
	}
	switch kind {
	case CoordinatesNone:
		return NoCoordinates(), nil
	case CoordinatesPhysical:
		return PhysicalCoordinates(), nil
	case CoordinatesLogical:
		return LogicalCoordinates(), nil
	case CoordinatesVisibleRange:
		if len(c.VisibleRange) != 4 {
			return CoordinateSystem{}, errors.Errorf("visible_range needs 4 values, got %d", len(c.VisibleRange))
		}
		fit, err := ParseScaleToFit(c.Fit)
		if err != nil {
			return CoordinateSystem{}, err
		}
		r := c.VisibleRange
		return VisibleRangeCoordinates(Rect{Left: r[0], Top: r[1], Right: r[2], Bottom: r[3]}, fit), nil
	default:
		if len(c.Center) != 2 {
			return CoordinateSystem{}, errors.Errorf("center needs 2 values, got %d", len(c.Center))
		}
		return FixedWidthCoordinates(gg.Pt(c.Center[0], c.Center[1]), c.XHalfExtent), nil
	}
}

// ParseCoordinateKind converts the textual form used in config files.
func ParseCoordinateKind(s string) (CoordinateKind, error) {
	switch strings.ToLower(s) {
	case "none":
		return CoordinatesNone, nil
	case "physical":
		return CoordinatesPhysical, nil
	case "logical":
		return CoordinatesLogical, nil
	case "visible_range":
		return CoordinatesVisibleRange, nil
	case "fixed_width":
		return CoordinatesFixedWidth, nil
	}
	return 0, fmt.Errorf("unknown coordinate system %q", s)
}
