package config

const (
	defaultDataDir            = "~/.local/share/yomu"
	defaultThumbnailDir       = "~/.local/share/yomu/thumbnails"
	defaultLogDir             = "~/.local/share/yomu/logs"
	defaultPageView           = "single"
	defaultLayoutDirection    = "ltr"
	defaultPreloadAmount      = 2
	defaultWebdexTimeout      = 30
	defaultFilesystemLanguage = "en"
	defaultNotifyTimeout      = 10
	defaultCoversTimeout      = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			ThumbnailDir: defaultThumbnailDir,
			LogDir:       defaultLogDir,
		},
		Library: Library{
			PreferredLanguages: []string{"en"},
		},
		Reader: Reader{
			PageView:        defaultPageView,
			LayoutDirection: defaultLayoutDirection,
			PreloadAmount:   defaultPreloadAmount,
		},
		Webdex: Webdex{
			RequestTimeout: defaultWebdexTimeout,
		},
		Filesystem: Filesystem{
			Language: defaultFilesystemLanguage,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Covers: Covers{
			RequestTimeout: defaultCoversTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
