package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateArtwork(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.URL != "" {
		parsed, err := url.Parse(c.Backend.URL)
		if err != nil {
			return fmt.Errorf("backend.url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("backend.url must be an http(s) URL, got %q", c.Backend.URL)
		}
		if parsed.Host == "" {
			return fmt.Errorf("backend.url must include a host, got %q", c.Backend.URL)
		}
	}
	if c.Backend.RequestTimeoutSeconds <= 0 {
		return errors.New("backend.request_timeout_seconds must be positive")
	}
	if c.Backend.PageSize <= 0 || c.Backend.PageSize > maxPageSize {
		return fmt.Errorf("backend.page_size must be between 1 and %d", maxPageSize)
	}
	return nil
}

func (c *Config) validateArtwork() error {
	if err := ensurePositiveMap(map[string]int64{
		"artwork.max_download_bytes":      c.Artwork.MaxDownloadBytes,
		"artwork.cache_bytes":             c.Artwork.CacheBytes,
		"artwork.max_dimension":           int64(c.Artwork.MaxDimension),
		"artwork.connect_timeout_seconds": int64(c.Artwork.ConnectTimeoutSeconds),
		"artwork.read_timeout_seconds":    int64(c.Artwork.ReadTimeoutSeconds),
	}); err != nil {
		return err
	}
	if c.Artwork.JPEGQuality < 1 || c.Artwork.JPEGQuality > 100 {
		return errors.New("artwork.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
