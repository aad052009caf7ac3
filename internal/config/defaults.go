package config

const (
	defaultConfigPath          = "~/.config/koneko/config.toml"
	defaultCacheDir            = "~/.local/share/koneko/cache"
	defaultLogDir              = "~/.local/share/koneko/logs"
	defaultDownloadsDir        = "~/Downloads"
	defaultImageWidth          = 18
	defaultImageHeight         = 8
	defaultImagesXSpacing      = 2
	defaultImagesYSpacing      = 1
	defaultPageSpacing         = 23
	defaultThumbnailSize       = 310
	defaultInterleaveGroupSize = 4
	defaultUsersNameXCoord     = 18
	defaultCompletionPolicy    = "drop"
	defaultWaitTimeoutSeconds  = 30
	defaultStaleness           = "dirwalk"
	defaultAPIBaseURL          = "https://app-api.pixiv.net"
	defaultAPIUserAgent        = "PixivIOSApp/7.13.3 (iOS 14.6; iPhone13,2)"
	defaultAPIReferer          = "https://app-api.pixiv.net/"
	defaultAPITimeoutSeconds   = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

func defaultGalleryPrintSpacing() []int {
	return []int{9, 17, 17, 17, 17}
}

func defaultRenderCommand() []string {
	return []string{
		"kitty", "+kitten", "icat", "--align", "left", "--silent",
		"--place", "{size}x{size}@{x}x{y}", "{path}",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:     defaultCacheDir,
			LogDir:       defaultLogDir,
			DownloadsDir: defaultDownloadsDir,
		},
		Lscat: Lscat{
			ImageWidth:           defaultImageWidth,
			ImageHeight:          defaultImageHeight,
			ImagesXSpacing:       defaultImagesXSpacing,
			ImagesYSpacing:       defaultImagesYSpacing,
			PageSpacing:          defaultPageSpacing,
			ImageThumbnailSize:   defaultThumbnailSize,
			InterleaveGroupSize:  defaultInterleaveGroupSize,
			UsersPrintNameXCoord: defaultUsersNameXCoord,
			GalleryPrintSpacing:  defaultGalleryPrintSpacing(),
		},
		Pipeline: Pipeline{
			CompletionPolicy:   defaultCompletionPolicy,
			WaitTimeoutSeconds: defaultWaitTimeoutSeconds,
			Staleness:          defaultStaleness,
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			UserAgent:      defaultAPIUserAgent,
			Referer:        defaultAPIReferer,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Render: Render{
			Command: defaultRenderCommand(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
