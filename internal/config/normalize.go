package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackend()
	c.normalizeArtwork()
	c.normalizeLibrary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv("GHPLAYER_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = value
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv("GHPLAYER_BACKEND_URL"); ok && strings.TrimSpace(value) != "" {
		c.Backend.URL = value
	}
	if value, ok := os.LookupEnv("GHPLAYER_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Backend.APIKey = value
	}
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	c.Backend.APIKey = strings.TrimSpace(c.Backend.APIKey)
	if c.Backend.RequestTimeoutSeconds <= 0 {
		c.Backend.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Backend.PageSize <= 0 {
		c.Backend.PageSize = defaultPageSize
	}
}

func (c *Config) normalizeArtwork() {
	if c.Artwork.MaxDownloadBytes <= 0 {
		c.Artwork.MaxDownloadBytes = defaultArtworkMaxBytes
	}
	if c.Artwork.CacheBytes <= 0 {
		c.Artwork.CacheBytes = defaultArtworkCacheBytes
	}
	if c.Artwork.MaxDimension <= 0 {
		c.Artwork.MaxDimension = defaultArtworkMaxDimension
	}
	if c.Artwork.JPEGQuality == 0 {
		c.Artwork.JPEGQuality = defaultArtworkJPEGQuality
	}
	if c.Artwork.ConnectTimeoutSeconds <= 0 {
		c.Artwork.ConnectTimeoutSeconds = defaultArtworkConnectTimeout
	}
	if c.Artwork.ReadTimeoutSeconds <= 0 {
		c.Artwork.ReadTimeoutSeconds = defaultArtworkReadTimeout
	}
}

func (c *Config) normalizeLibrary() {
	c.Library.RootTitle = strings.TrimSpace(c.Library.RootTitle)
	if c.Library.RootTitle == "" {
		c.Library.RootTitle = defaultRootTitle
	}
	c.Library.LoginTitle = strings.TrimSpace(c.Library.LoginTitle)
	if c.Library.LoginTitle == "" {
		c.Library.LoginTitle = defaultLoginTitle
	}
	c.Library.LoginSubtitle = strings.TrimSpace(c.Library.LoginSubtitle)
	if c.Library.LoginSubtitle == "" {
		c.Library.LoginSubtitle = defaultLoginSubtitle
	}
	c.Library.DefaultPublisher = strings.TrimSpace(c.Library.DefaultPublisher)
	if c.Library.DefaultPublisher == "" {
		c.Library.DefaultPublisher = defaultPublisher
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
