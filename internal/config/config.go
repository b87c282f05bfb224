package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Format is the output aspect family.
type Format string

const (
	FormatLandscape Format = "landscape"
	FormatPortrait  Format = "portrait"
	FormatSquare    Format = "square"
	FormatStory     Format = "story"
)

// Quality selects a fixed multiplier over the 720p base resolution.
type Quality string

const (
	QualitySD  Quality = "sd"
	QualityHD  Quality = "hd"
	QualityFHD Quality = "fhd"
	Quality2K  Quality = "2k"
	Quality4K  Quality = "4k"
)

// Codec is consumed only by the encoder sink.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecH265 Codec = "h265"
	CodecVP9  Codec = "vp9"
)

// Config holds render settings. Content lives in the project file.
type Config struct {
	FPS          int     `toml:"fps"`
	Format       Format  `toml:"format"`
	Quality      Quality `toml:"quality"`
	Codec        Codec   `toml:"codec"`
	CRF          int     `toml:"crf"`
	Workers      int     `toml:"workers"`
	Output       string  `toml:"output"`
	Sink         string  `toml:"sink"` // ffmpeg | png
	HWAccel      bool    `toml:"hw_accel"`
	AssetTimeout float64 `toml:"asset_timeout_seconds"`
	PDFDPI       int     `toml:"pdf_dpi"`
	MetricsOut   string  `toml:"metrics_out"`
	ShowStats    bool    `toml:"show_stats"`
	BuildVersion string  `toml:"-"`
}

// Load reads a TOML settings file over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Resolution returns the output frame size for the configured format and
// quality.
func (c Config) Resolution() (width, height int, err error) {
	return ResolutionFor(c.Format, c.Quality)
}

// Timing returns the structural frame counts for the configured fps.
func (c Config) Timing() Timing {
	return TimingFor(c.FPS)
}
