package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLscat(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLscat() error {
	positive := []struct {
		key   string
		value int
	}{
		{"lscat.image_width", c.Lscat.ImageWidth},
		{"lscat.image_height", c.Lscat.ImageHeight},
		{"lscat.image_thumbnail_size", c.Lscat.ImageThumbnailSize},
		{"lscat.interleave_group_size", c.Lscat.InterleaveGroupSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive", p.key)
		}
	}
	if c.Lscat.ImagesXSpacing < 0 || c.Lscat.ImagesYSpacing < 0 {
		return errors.New("lscat.images_x_spacing and lscat.images_y_spacing must not be negative")
	}
	if c.Lscat.PageSpacing < 0 {
		return errors.New("lscat.page_spacing must not be negative")
	}
	for _, s := range c.Lscat.GalleryPrintSpacing {
		if s < 0 {
			return errors.New("lscat.gallery_print_spacing entries must not be negative")
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	switch c.Pipeline.CompletionPolicy {
	case "drop", "skip", "fail", "wait":
	default:
		return fmt.Errorf("pipeline.completion_policy: unsupported value %q (want drop, skip, fail or wait)", c.Pipeline.CompletionPolicy)
	}
	switch c.Pipeline.Staleness {
	case "dirwalk", "manifest":
	default:
		return fmt.Errorf("pipeline.staleness: unsupported value %q (want dirwalk or manifest)", c.Pipeline.Staleness)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
