package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-update/internal/weather"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Provider  ProviderConfig
	Geocoder  GeocoderConfig
	Store     StoreConfig
	Scheduler SchedulerConfig

	// Locations to track, "lat,lon;lat,lon".
	Locations string
}

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// ProviderConfig selects and configures the forecast source. An empty BaseURL
// uses the provider's public endpoint.
type ProviderConfig struct {
	Name    string // darksky, openmeteo
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type GeocoderConfig struct {
	APIKey string
}

type StoreConfig struct {
	Driver     string // sqlite, memory
	Path       string
	MaxHistory int // snapshots kept per location
}

type SchedulerConfig struct {
	Interval time.Duration
}

// Load reads configuration from an optional .env file, an optional config
// file and WEATHER_UPDATE_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("provider.name", "darksky")
	v.SetDefault("provider.baseurl", "")
	v.SetDefault("provider.apikey", "")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("geocoder.apikey", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "weather.db")
	v.SetDefault("store.maxhistory", 48) // roughly 12h at 15-minute intervals
	v.SetDefault("scheduler.interval", 15*time.Minute)
	v.SetDefault("locations", "")

	v.SetEnvPrefix("WEATHER_UPDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Provider.Name {
	case "darksky", "openmeteo":
	default:
		return nil, fmt.Errorf("invalid provider %q: use darksky or openmeteo", cfg.Provider.Name)
	}
	switch cfg.Store.Driver {
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("invalid store driver %q: use sqlite or memory", cfg.Store.Driver)
	}
	if cfg.Scheduler.Interval <= 0 {
		return nil, fmt.Errorf("invalid scheduler interval %s", cfg.Scheduler.Interval)
	}

	return &cfg, nil
}

// GetServerAddr returns the server address in the format ":port".
func (c *Config) GetServerAddr() string {
	return ":" + c.Server.Port
}

// Coordinates parses the configured location list.
func (c *Config) Coordinates() ([]weather.Coords, error) {
	return ParseCoordinates(c.Locations)
}

// ParseCoordinates parses "lat,lon;lat,lon". Empty entries are ignored.
func ParseCoordinates(s string) ([]weather.Coords, error) {
	var out []weather.Coords
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid location %q: want lat,lon", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
		}
		if lat < -90 || lat > 90 {
			return nil, fmt.Errorf("latitude %v out of range in %q", lat, entry)
		}
		if lon < -180 || lon > 180 {
			return nil, fmt.Errorf("longitude %v out of range in %q", lon, entry)
		}
		out = append(out, weather.Coords{Latitude: lat, Longitude: lon})
	}
	return out, nil
}

// NewLogger creates a new slog.Logger based on the configuration.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
