package testsupport

import (
	"path/filepath"
	"testing"

	"ghplayer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Backend.RequestTimeoutSeconds = 2
	cfgVal.Artwork.ConnectTimeoutSeconds = 2
	cfgVal.Artwork.ReadTimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend sets the backend defaults used to seed credentials.
func WithBackend(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.URL = url
		b.cfg.Backend.APIKey = apiKey
	}
}

// WithArtworkLimits overrides the download ceiling and cache budget.
func WithArtworkLimits(maxDownload, cacheBytes int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Artwork.MaxDownloadBytes = maxDownload
		b.cfg.Artwork.CacheBytes = cacheBytes
	}
}

// WithPageSize overrides the backend page size.
func WithPageSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.PageSize = size
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
