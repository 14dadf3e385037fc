package artwork

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ghplayer/internal/config"
	"ghplayer/internal/credentials"
	"ghplayer/internal/logging"
)

// Downloader fetches raw artwork bytes.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Resolver normalizes artwork references and serves their bytes through the cache.
type Resolver struct {
	cache        *Cache
	creds        credentials.Loader
	downloader   Downloader
	recompressor Recompressor
	metrics      *Metrics
	logger       *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithDownloader replaces the default bounded HTTP downloader.
func WithDownloader(d Downloader) Option {
	return func(r *Resolver) {
		if d != nil {
			r.downloader = d
		}
	}
}

// WithMetrics records download outcomes.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver wires a Resolver from configuration. creds supplies the backend
// base URL used for relative storage paths.
func NewResolver(cfg *config.Config, cache *Cache, creds credentials.Loader, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		cache: cache,
		creds: creds,
		downloader: NewFetcher(
			cfg.Artwork.MaxDownloadBytes,
			cfg.ArtworkConnectTimeout(),
			cfg.ArtworkReadTimeout(),
		),
		recompressor: Recompressor{
			MaxDimension: cfg.Artwork.MaxDimension,
			Quality:      cfg.Artwork.JPEGQuality,
			MaxBytes:     cfg.Artwork.MaxDownloadBytes,
		},
		logger: logging.NewComponentLogger(logger, "artwork"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache exposes the underlying cache for diagnostics.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve normalizes raw against the stored backend base URL. The boolean is
// false when raw is blank.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, bool) {
	return NormalizeURL(raw, r.baseURL(ctx))
}

// FetchBytes returns image bytes for an already normalized URL. Cache hits do
// no I/O. On a miss the bytes are downloaded, recompressed (falling back to the
// raw download when recompression fails), and cached. The boolean is false
// whenever no bytes are available; the cause is logged.
func (r *Resolver) FetchBytes(ctx context.Context, url string) ([]byte, bool) {
	if url == "" {
		return nil, false
	}
	if data, ok := r.cache.Get(url); ok {
		return data, true
	}
	logger := logging.WithContext(ctx, r.logger)
	if !isHTTPURL(url) {
		logger.Debug("artwork reference is not downloadable", logging.String("url", url))
		return nil, false
	}

	start := time.Now()
	raw, err := r.downloader.Download(ctx, url)
	if err != nil {
		r.metrics.observeDownload(downloadOutcome(err))
		logging.WarnWithContext(logger, "artwork download failed", "artwork_download_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldErrorHint, "check the artwork URL and backend storage availability"),
			logging.String(logging.FieldImpact, "item shown without artwork"),
		)
		return nil, false
	}

	data, format, err := r.recompressor.Recompress(raw)
	if err != nil {
		r.metrics.observeDownload("raw")
		logging.WarnWithContext(logger, "artwork recompression failed; keeping original bytes", "artwork_recompress_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.Size("raw_size", int64(len(raw))),
			logging.String(logging.FieldImpact, "artwork cached at original size"),
		)
		data = raw
	} else {
		r.metrics.observeDownload("ok")
		logger.Debug("artwork cached",
			logging.String("url", url),
			logging.String("format", format),
			logging.Size("raw_size", int64(len(raw))),
			logging.Size("size", int64(len(data))),
			logging.Duration("elapsed", time.Since(start)),
		)
	}

	r.cache.Put(url, data)
	return data, true
}

// Artwork resolves raw and fetches its bytes. ref is empty when raw is blank;
// data is nil when the bytes could not be obtained.
func (r *Resolver) Artwork(ctx context.Context, raw string) (ref string, data []byte) {
	ref, ok := r.Resolve(ctx, raw)
	if !ok {
		return "", nil
	}
	data, _ = r.FetchBytes(ctx, ref)
	return ref, data
}

// Cached returns the bytes stored for a ref produced by Artwork. It never
// downloads, so callers cannot use it to reach arbitrary URLs.
func (r *Resolver) Cached(ref string) ([]byte, bool) {
	if ref == "" {
		return nil, false
	}
	return r.cache.Get(ref)
}

func (r *Resolver) baseURL(ctx context.Context) string {
	if r.creds == nil {
		return ""
	}
	cfg, ok, err := r.creds.Load(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "credential lookup failed during artwork normalization", "credentials_load_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "relative artwork paths left unresolved"),
		)
		return ""
	}
	if !ok {
		return ""
	}
	return cfg.BaseURL
}

func downloadOutcome(err error) string {
	var status *StatusError
	switch {
	case errors.As(err, &status):
		return "http_status"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrReadTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnsupportedScheme):
		return "unsupported"
	default:
		return "error"
	}
}
