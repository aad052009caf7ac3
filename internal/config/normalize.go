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
	c.normalizeLscat()
	c.normalizePipeline()
	c.normalizeAPI()
	c.normalizeRender()
	c.normalizeLogging()
	c.Metrics.Listen = strings.TrimSpace(c.Metrics.Listen)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadsDir) == "" {
		c.Paths.DownloadsDir = defaultDownloadsDir
	}
	if c.Paths.DownloadsDir, err = expandPath(c.Paths.DownloadsDir); err != nil {
		return fmt.Errorf("paths.downloads_dir: %w", err)
	}
	return nil
}

// normalizeLscat restores the documented fallback for any geometry value
// left at zero, mirroring how missing keys behave.
func (c *Config) normalizeLscat() {
	fallback := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	fallback(&c.Lscat.ImageWidth, defaultImageWidth)
	fallback(&c.Lscat.ImageHeight, defaultImageHeight)
	fallback(&c.Lscat.PageSpacing, defaultPageSpacing)
	fallback(&c.Lscat.ImageThumbnailSize, defaultThumbnailSize)
	fallback(&c.Lscat.InterleaveGroupSize, defaultInterleaveGroupSize)
	fallback(&c.Lscat.UsersPrintNameXCoord, defaultUsersNameXCoord)
	if len(c.Lscat.GalleryPrintSpacing) == 0 {
		c.Lscat.GalleryPrintSpacing = defaultGalleryPrintSpacing()
	}
}

func (c *Config) normalizePipeline() {
	c.Pipeline.CompletionPolicy = strings.ToLower(strings.TrimSpace(c.Pipeline.CompletionPolicy))
	if c.Pipeline.CompletionPolicy == "" {
		c.Pipeline.CompletionPolicy = defaultCompletionPolicy
	}
	if c.Pipeline.WaitTimeoutSeconds <= 0 {
		c.Pipeline.WaitTimeoutSeconds = defaultWaitTimeoutSeconds
	}
	c.Pipeline.Staleness = strings.ToLower(strings.TrimSpace(c.Pipeline.Staleness))
	if c.Pipeline.Staleness == "" {
		c.Pipeline.Staleness = defaultStaleness
	}
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	c.API.AccessToken = strings.TrimSpace(c.API.AccessToken)
	if c.API.AccessToken == "" {
		if value, ok := os.LookupEnv("KONEKO_ACCESS_TOKEN"); ok {
			c.API.AccessToken = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.API.UserAgent) == "" {
		c.API.UserAgent = defaultAPIUserAgent
	}
	if strings.TrimSpace(c.API.Referer) == "" {
		c.API.Referer = defaultAPIReferer
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
}

func (c *Config) normalizeRender() {
	cmd := c.Render.Command[:0]
	for _, part := range c.Render.Command {
		if part = strings.TrimSpace(part); part != "" {
			cmd = append(cmd, part)
		}
	}
	c.Render.Command = cmd
	if len(c.Render.Command) == 0 {
		c.Render.Command = defaultRenderCommand()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
