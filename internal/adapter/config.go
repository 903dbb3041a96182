package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds catalog service configuration
type ServerConfig struct {
	URL     string        `mapstructure:"url" validate:"required|fullUrl"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

// CacheConfig holds local cache configuration.
// The TTLs are the staleness thresholds for each cached entity type.
type CacheConfig struct {
	Dir           string        `mapstructure:"dir"`
	MusiciansTTL  time.Duration `mapstructure:"musicians_ttl" validate:"required"`
	CollectorsTTL time.Duration `mapstructure:"collectors_ttl" validate:"required"`
	PageSize      int           `mapstructure:"page_size" validate:"required|min:1|max:500"`
	MemoryMB      int           `mapstructure:"memory_mb" validate:"min:0|max:1024"` // 0 disables the page cache
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultRole   string `mapstructure:"default_role"`   // "visitor" or "collector"
	DefaultScreen string `mapstructure:"default_screen"` // "albums", "musicians" or "collectors"
	CollectorID   int    `mapstructure:"collector_id"`   // identity comments are posted as

	// ImageViewer opens cover and portrait URLs; empty uses the system default
	ImageViewer     string   `mapstructure:"image_viewer"`
	ImageViewerArgs []string `mapstructure:"image_viewer_args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the optional prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Dir:           defaultCachePath(),
			MusiciansTTL:  5 * time.Minute,
			CollectorsTTL: 5 * time.Minute,
			PageSize:      20,
			MemoryMB:      8,
		},
		UI: UIConfig{
			DefaultRole:   "visitor",
			DefaultScreen: "albums",
			CollectorID:   100,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vinilo", "vinilo.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vinilo", "vinilo.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vinilo")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vinilo")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "vinilo", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vinilo", "cache")
	}
}

// LoadConfig loads configuration from file and environment.
// An explicit path overrides the search locations.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides: VINILO_SERVER_URL, VINILO_CACHE_PAGE_SIZE, ...
	v.SetEnvPrefix("VINILO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv also applies to Unmarshal,
// which only sees keys viper already knows about.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.url", "server.timeout",
		"cache.dir", "cache.musicians_ttl", "cache.collectors_ttl", "cache.page_size", "cache.memory_mb",
		"ui.default_role", "ui.default_screen", "ui.collector_id", "ui.image_viewer", "ui.image_viewer_args",
		"logging.file", "logging.level",
		"metrics.enabled", "metrics.addr",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks the sections that have hard requirements
func (c *Config) Validate() error {
	for name, section := range map[string]any{"server": &c.Server, "cache": &c.Cache} {
		v := validate.Struct(section)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", name, v.Errors.One())
		}
	}
	return nil
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfig(cfg, filepath.Join(configPath, "config.yaml"))
}

func writeConfig(cfg *Config, file string) error {
	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.timeout", cfg.Server.Timeout.String())

	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.musicians_ttl", cfg.Cache.MusiciansTTL.String())
	v.Set("cache.collectors_ttl", cfg.Cache.CollectorsTTL.String())
	v.Set("cache.page_size", cfg.Cache.PageSize)
	v.Set("cache.memory_mb", cfg.Cache.MemoryMB)

	v.Set("ui.default_role", cfg.UI.DefaultRole)
	v.Set("ui.default_screen", cfg.UI.DefaultScreen)
	v.Set("ui.collector_id", cfg.UI.CollectorID)
	v.Set("ui.image_viewer", cfg.UI.ImageViewer)
	v.Set("ui.image_viewer_args", cfg.UI.ImageViewerArgs)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	v.Set("metrics.enabled", cfg.Metrics.Enabled)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CacheDir returns the cache directory for the configured server.
// Each server gets its own subdirectory so switching servers never mixes rows.
func (c *Config) CacheDir() string {
	if c.Cache.Dir == "" {
		return ""
	}
	return filepath.Join(expandHome(c.Cache.Dir), hashServerURL(c.Server.URL))
}

// ClearCache removes all cached data for the configured server
func (c *Config) ClearCache() error {
	dir := c.CacheDir()
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
