package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"koneko/internal/layout"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir     string `toml:"cache_dir"`
	LogDir       string `toml:"log_dir"`
	DownloadsDir string `toml:"downloads_dir"`
}

// Lscat contains grid geometry used when drawing thumbnails.
type Lscat struct {
	ImageWidth           int   `toml:"image_width"`
	ImageHeight          int   `toml:"image_height"`
	ImagesXSpacing       int   `toml:"images_x_spacing"`
	ImagesYSpacing       int   `toml:"images_y_spacing"`
	PageSpacing          int   `toml:"page_spacing"`
	ImageThumbnailSize   int   `toml:"image_thumbnail_size"`
	InterleaveGroupSize  int   `toml:"interleave_group_size"`
	UsersPrintNameXCoord int   `toml:"users_print_name_xcoord"`
	GalleryPrintSpacing  []int `toml:"gallery_print_spacing"`
}

// Pipeline contains download reassembly settings.
type Pipeline struct {
	// CompletionPolicy decides what happens to ordinals that never complete:
	// "drop", "skip", "fail" or "wait".
	CompletionPolicy   string `toml:"completion_policy"`
	WaitTimeoutSeconds int    `toml:"wait_timeout_seconds"`
	// Staleness selects how already-downloaded files are detected:
	// "dirwalk" or "manifest".
	Staleness string `toml:"staleness"`
}

// API contains catalog endpoint settings. The access token is never written
// to the sample file; it is read from KONEKO_ACCESS_TOKEN when unset.
type API struct {
	BaseURL        string `toml:"base_url"`
	AccessToken    string `toml:"access_token"`
	UserAgent      string `toml:"user_agent"`
	Referer        string `toml:"referer"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains the external image display command.
type Render struct {
	Command []string `toml:"command"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics contains the optional Prometheus listener.
type Metrics struct {
	Listen string `toml:"listen"`
}

// Config encapsulates all configuration values for koneko.
//
// Configuration sections by subsystem:
//   - Paths: cache, log and download directories
//   - Lscat: thumbnail grid geometry
//   - Pipeline: reassembly completion policy and staleness detection
//   - API: catalog endpoint and credentials fallback
//   - Render: external image display command
//   - Logging: log format and level
//   - Metrics: Prometheus listener
type Config struct {
	Paths    Paths    `toml:"paths"`
	Lscat    Lscat    `toml:"lscat"`
	Pipeline Pipeline `toml:"pipeline"`
	API      API      `toml:"api"`
	Render   Render   `toml:"render"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("koneko.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LayoutSettings returns the plain settings record consumed by the grid
// layout engine and the display stage.
func (c *Config) LayoutSettings() layout.Settings {
	return layout.Settings{
		TileWidth:     c.Lscat.ImageWidth,
		TileHeight:    c.Lscat.ImageHeight,
		XPadding:      c.Lscat.ImagesXSpacing,
		YPadding:      c.Lscat.ImagesYSpacing,
		PageSpacing:   c.Lscat.PageSpacing,
		ThumbnailSize: c.Lscat.ImageThumbnailSize,
		GroupSize:     c.Lscat.InterleaveGroupSize,
	}
}

// UsersPageSpacing is the scroll distance used by the followed-artist view,
// which prints two lines of artist info below each row.
func (c *Config) UsersPageSpacing() int {
	return c.Lscat.PageSpacing - 3
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
