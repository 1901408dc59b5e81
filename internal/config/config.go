package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL          string
	RedisAddr            string
	Port                 string
	AppEnv               string
	JWTSecret            string
	JWTTTL               time.Duration
	OtelExporterEndpoint string
	KafkaBrokers         []string
	KafkaTopic           string
	CacheTTL             time.Duration
}

// Load reads configuration from environment variables.
// It applies defaults for "local" environments but enforces strictness for others.
func Load() (Config, error) {
	cfg := Config{
		Port:                 os.Getenv("PORT"),
		AppEnv:               os.Getenv("APP_ENV"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		OtelExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		KafkaBrokers:         splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:           os.Getenv("KAFKA_TOPIC"),
	}
	local := cfg.AppEnv == "local"

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		if local {
			cfg.JWTSecret = "dev-secret-do-not-use-in-prod"
		} else {
			return Config{}, errors.New("JWT_SECRET is required")
		}
	}
	// Default to production safety if not explicitly set to local
	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "favorites.events"
	}

	var err error
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationEnv("FAVORITES_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	// Locally the snapshot cache may be left out.
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" && !local {
		return Config{}, errors.New("REDIS_ADDR is required")
	}

	return cfg, nil
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL           string
	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string
	DeezerBaseURL    string
	DataDir          string
	CatalogTimeout   time.Duration
	CatalogRPS       float64
}

// LoadClient reads the client configuration. Provider base URLs left empty fall
// back to the public endpoints inside the catalog clients.
func LoadClient() (ClientConfig, error) {
	cfg := ClientConfig{
		APIURL:           os.Getenv("API_URL"),
		TMDBAPIKey:       os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:      os.Getenv("TMDB_BASE_URL"),
		TMDBImageBaseURL: os.Getenv("TMDB_IMAGE_BASE_URL"),
		DeezerBaseURL:    os.Getenv("DEEZER_BASE_URL"),
		DataDir:          os.Getenv("CLIENT_DATA_DIR"),
	}

	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8080"
	}
	if cfg.TMDBAPIKey == "" {
		return ClientConfig{}, errors.New("TMDB_API_KEY is required")
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ClientConfig{}, fmt.Errorf("CLIENT_DATA_DIR is not set and the home directory is unknown: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".media-favorites")
	}

	var err error
	if cfg.CatalogTimeout, err = durationEnv("CATALOG_TIMEOUT", 10*time.Second); err != nil {
		return ClientConfig{}, err
	}
	if v := os.Getenv("CATALOG_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return ClientConfig{}, fmt.Errorf("invalid CATALOG_RPS %q", v)
		}
		cfg.CatalogRPS = rps
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
