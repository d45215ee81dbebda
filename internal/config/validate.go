package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateReader(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.ThumbnailDir == "" {
		return errors.New("paths.thumbnail_dir must be set")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	for _, lang := range c.Library.PreferredLanguages {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("library.preferred_languages: invalid tag %q: %w", lang, err)
		}
	}
	return nil
}

func (c *Config) validateReader() error {
	switch c.Reader.PageView {
	case "single", "double", "double-odd-start":
	default:
		return fmt.Errorf("reader.page_view: unsupported value %q", c.Reader.PageView)
	}
	switch c.Reader.LayoutDirection {
	case "ltr", "rtl":
	default:
		return fmt.Errorf("reader.layout_direction: unsupported value %q", c.Reader.LayoutDirection)
	}
	if c.Reader.PreloadAmount < 0 {
		return errors.New("reader.preload_amount must be >= 0")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	for key, value := range map[string]int{
		"webdex.request_timeout":        c.Webdex.RequestTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"covers.request_timeout":        c.Covers.RequestTimeout,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
