package config

const (
	defaultDataDir               = "~/.local/share/ghplayer"
	defaultLogDir                = "~/.local/share/ghplayer/logs"
	defaultAPIBind               = "127.0.0.1:7490"
	defaultRequestTimeoutSeconds = 15
	defaultPageSize              = 50
	maxPageSize                  = 500
	defaultArtworkMaxBytes       = 6 * 1024 * 1024
	defaultArtworkCacheBytes     = 8 * 1024 * 1024
	defaultArtworkMaxDimension   = 512
	defaultArtworkJPEGQuality    = 85
	defaultArtworkConnectTimeout = 7
	defaultArtworkReadTimeout    = 7
	defaultRootTitle             = "GH Player"
	defaultLoginTitle            = "Sign in on your phone"
	defaultLoginSubtitle         = "Open GH Player on your phone to continue"
	defaultPublisher             = "Goalhanger"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Backend: Backend{
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			PageSize:              defaultPageSize,
		},
		Artwork: Artwork{
			MaxDownloadBytes:      defaultArtworkMaxBytes,
			CacheBytes:            defaultArtworkCacheBytes,
			MaxDimension:          defaultArtworkMaxDimension,
			JPEGQuality:           defaultArtworkJPEGQuality,
			ConnectTimeoutSeconds: defaultArtworkConnectTimeout,
			ReadTimeoutSeconds:    defaultArtworkReadTimeout,
		},
		Library: Library{
			RootTitle:        defaultRootTitle,
			LoginTitle:       defaultLoginTitle,
			LoginSubtitle:    defaultLoginSubtitle,
			DefaultPublisher: defaultPublisher,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
