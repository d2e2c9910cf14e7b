package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.UploadDir == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if c.Paths.JobsDir == "" {
		return errors.New("paths.jobs_dir must be set")
	}
	if c.Paths.UploadDir == c.Paths.JobsDir {
		return errors.New("paths.upload_dir and paths.jobs_dir must differ")
	}
	return nil
}

func (c *Config) validateFrames() error {
	if c.Frames.DedupeThreshold < 0 {
		return errors.New("frames.dedupe_threshold must not be negative")
	}
	if c.Frames.DedupeThreshold > 64 {
		return errors.New("frames.dedupe_threshold must not exceed 64 (hash width)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
