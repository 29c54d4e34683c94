package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
	Desktop     DesktopConfig
	Persistence PersistenceConfig
	Weather     WeatherConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	AssetsDir       string        `envconfig:"ASSETS_DIR" default:"./assets/icons"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	Gzip            bool          `envconfig:"GZIP_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DesktopConfig holds window defaults and the icon catalog location.
type DesktopConfig struct {
	CatalogPath    string  `envconfig:"CATALOG_PATH"`
	BaseZIndex     int     `envconfig:"BASE_Z_INDEX" default:"10"`
	WindowX        float64 `envconfig:"WINDOW_X" default:"100"`
	WindowY        float64 `envconfig:"WINDOW_Y" default:"100"`
	WindowWidth    float64 `envconfig:"WINDOW_WIDTH" default:"800"`
	WindowHeight   float64 `envconfig:"WINDOW_HEIGHT" default:"600"`
	MinWidth       float64 `envconfig:"WINDOW_MIN_WIDTH" default:"200"`
	MinHeight      float64 `envconfig:"WINDOW_MIN_HEIGHT" default:"120"`
	Reserved       float64 `envconfig:"TASKBAR_RESERVED" default:"0.10"`
	ViewportWidth  float64 `envconfig:"VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight float64 `envconfig:"VIEWPORT_HEIGHT" default:"800"`
}

// PersistenceConfig holds state storage configuration.
type PersistenceConfig struct {
	Enabled  bool          `envconfig:"STATE_ENABLED" default:"true"`
	Dir      string        `envconfig:"STATE_DIR" default:"./data"`
	Compress bool          `envconfig:"STATE_COMPRESS" default:"false"`
	Debounce time.Duration `envconfig:"STATE_DEBOUNCE" default:"250ms"`
}

// WeatherConfig holds weather provider configuration.
type WeatherConfig struct {
	APIKey          string        `envconfig:"WEATHER_API_KEY"`
	BaseURL         string        `envconfig:"WEATHER_BASE_URL" default:"https://api.weatherapi.com/v1"`
	Timeout         time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	RefreshInterval time.Duration `envconfig:"WEATHER_REFRESH" default:"10m"`
	RetryMax        int           `envconfig:"WEATHER_RETRY_MAX" default:"2"`
	CacheSize       int           `envconfig:"WEATHER_CACHE_SIZE" default:"64"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Desktop.Reserved < 0 || c.Desktop.Reserved >= 1 {
		return fmt.Errorf("invalid config: TASKBAR_RESERVED must be in [0,1), got %v", c.Desktop.Reserved)
	}
	if c.Desktop.ViewportWidth <= 0 || c.Desktop.ViewportHeight <= 0 {
		return fmt.Errorf("invalid config: viewport must be positive")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			AllowedOrigins:  []string{"http://localhost:3000"},
			AssetsDir:       "./assets/icons",
			ShutdownTimeout: 10 * time.Second,
			Gzip:            true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Desktop: DesktopConfig{
			BaseZIndex:     10,
			WindowX:        100,
			WindowY:        100,
			WindowWidth:    800,
			WindowHeight:   600,
			MinWidth:       200,
			MinHeight:      120,
			Reserved:       0.10,
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Persistence: PersistenceConfig{
			Enabled:  true,
			Dir:      "./data",
			Debounce: 250 * time.Millisecond,
		},
		Weather: WeatherConfig{
			BaseURL:         "https://api.weatherapi.com/v1",
			Timeout:         10 * time.Second,
			RefreshInterval: 10 * time.Minute,
			RetryMax:        2,
			CacheSize:       64,
		},
	}
}
