package config

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize trims and lowercases enumerations in place.
func (c *Config) Normalize() {
	c.Format = Format(strings.ToLower(strings.TrimSpace(string(c.Format))))
	c.Quality = Quality(strings.ToLower(strings.TrimSpace(string(c.Quality))))
	c.Codec = Codec(strings.ToLower(strings.TrimSpace(string(c.Codec))))
	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	c.Output = strings.TrimSpace(c.Output)
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.AssetTimeout <= 0 {
		c.AssetTimeout = DefaultAssetTimeout
	}
	if c.PDFDPI <= 0 {
		c.PDFDPI = DefaultPDFDPI
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.FPS != 30 && c.FPS != 60 {
		errs = append(errs, fmt.Errorf("fps must be 30 or 60, got %d", c.FPS))
	}
	if _, ok := formatBases[c.Format]; !ok {
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	if _, ok := qualityScales[c.Quality]; !ok {
		errs = append(errs, fmt.Errorf("unknown quality %q", c.Quality))
	}
	switch c.Codec {
	case CodecH264, CodecH265, CodecVP9:
	default:
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}
	if c.CRF < 0 || c.CRF > 51 {
		errs = append(errs, fmt.Errorf("crf must be within 0..51, got %d", c.CRF))
	}
	switch c.Sink {
	case "ffmpeg", "png":
	default:
		errs = append(errs, fmt.Errorf("unknown sink %q", c.Sink))
	}
	return errors.Join(errs...)
}
