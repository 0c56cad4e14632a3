package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Renderer  RendererConfig  `mapstructure:"renderer"`
	Cache     CacheConfig     `mapstructure:"cache"`
	History   HistoryConfig   `mapstructure:"history"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SecretKey       string        `mapstructure:"secret_key"`
	StaticDir       string        `mapstructure:"static_dir"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultRestrictedPreviewTTL is how long previews under the temp root are kept when
// storage.preview_ttl is not configured.
const DefaultRestrictedPreviewTTL = 24 * time.Hour

// StorageConfig decides where generated files live. Restricted mode is for hosts where
// only /tmp is writable.
type StorageConfig struct {
	Restricted    bool          `mapstructure:"restricted"`
	PreviewDir    string        `mapstructure:"preview_dir"`
	DownloadDirs  []string      `mapstructure:"download_dirs"`
	TempRoot      string        `mapstructure:"temp_root"`
	PreviewTTL    time.Duration `mapstructure:"preview_ttl"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// DefaultDir is the folder for browser downloads and previews.
func (s StorageConfig) DefaultDir() string {
	if s.Restricted {
		return filepath.Join(s.TempRoot, "qr_codes")
	}
	return s.PreviewDir
}

// ServerDir is the folder for an explicit server-side save.
func (s StorageConfig) ServerDir(serverPath string) (string, error) {
	if s.Restricted {
		return s.TempRoot, nil
	}
	return filepath.Abs(serverPath)
}

// PreviewURL is the browser path of a preview image, with a cache-busting timestamp.
func (s StorageConfig) PreviewURL(filename string, at time.Time) string {
	prefix := "/static/qr_codes/"
	if s.Restricted {
		prefix = "/tmp/qr_codes/"
	}
	return fmt.Sprintf("%s%s?t=%d", prefix, filename, at.UnixMilli())
}

// ListDirs are the folders shown by the file listing. Nothing is listed in restricted mode.
func (s StorageConfig) ListDirs() []string {
	if s.Restricted {
		return nil
	}
	return s.DownloadDirs
}

// AllowedDirs are the folders downloads may be served from.
func (s StorageConfig) AllowedDirs() []string {
	if s.Restricted {
		return []string{s.TempRoot}
	}
	return s.DownloadDirs
}

// TempPreviewDir is the fixed folder behind /tmp/qr_codes/.
func (s StorageConfig) TempPreviewDir() string {
	return filepath.Join(s.TempRoot, "qr_codes")
}

type RendererConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Margin   int           `mapstructure:"margin"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

type RateLimitConfig struct {
	GeneratePerMinute int `mapstructure:"generate_per_minute"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.secret_key", "your-secret-key-here-change-in-production")
	v.SetDefault("server.static_dir", "static")

	v.SetDefault("storage.restricted", false)
	v.SetDefault("storage.preview_dir", "static/qr_codes")
	v.SetDefault("storage.download_dirs", []string{"static/qr_codes", "downloads"})
	v.SetDefault("storage.temp_root", "/tmp")
	v.SetDefault("storage.purge_interval", "1h")

	v.SetDefault("renderer.endpoint", "http://api.qrserver.com/v1/create-qr-code/")
	v.SetDefault("renderer.timeout", "30s")
	v.SetDefault("renderer.margin", 10)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.database_path", "data/history.db")

	v.SetDefault("rate_limit.generate_per_minute", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "logs/qrgen.log")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("logging.compress", true)
}

// Load reads the YAML file at path (CONFIG_PATH when empty), then the environment. A
// missing file is not an error; every key has a default.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("storage.restricted", "STORAGE_RESTRICTED", "VERCEL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("server.secret_key", "SERVER_SECRET_KEY", "SECRET_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("storage.preview_ttl"); err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Outside restricted mode the default folder holds listed downloads, so nothing is
	// purged unless preview_ttl is set explicitly.
	if config.Storage.Restricted && !v.IsSet("storage.preview_ttl") {
		config.Storage.PreviewTTL = DefaultRestrictedPreviewTTL
	}

	return &config, nil
}
