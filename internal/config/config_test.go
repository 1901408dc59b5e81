package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	base := func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/test")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("JWT_SECRET", "super-secret")
		t.Setenv("PORT", "")
		t.Setenv("APP_ENV", "")
		t.Setenv("JWT_TTL", "")
		t.Setenv("FAVORITES_CACHE_TTL", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("KAFKA_TOPIC", "")
	}

	t.Run("success with all values set", func(t *testing.T) {
		base(t)
		t.Setenv("PORT", "9000")
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_TTL", "30m")
		t.Setenv("FAVORITES_CACHE_TTL", "1m")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
		t.Setenv("KAFKA_TOPIC", "favs")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost:5432/test", cfg.DatabaseURL)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "super-secret", cfg.JWTSecret)
		assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
		assert.Equal(t, time.Minute, cfg.CacheTTL)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, "favs", cfg.KafkaTopic)
	})

	t.Run("defaults", func(t *testing.T) {
		base(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "production", cfg.AppEnv)
		assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
		assert.Empty(t, cfg.KafkaBrokers)
		assert.Equal(t, "favorites.events", cfg.KafkaTopic)
	})

	t.Run("local relaxes secret and redis", func(t *testing.T) {
		base(t)
		t.Setenv("APP_ENV", "local")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("REDIS_ADDR", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.JWTSecret)
		assert.Empty(t, cfg.RedisAddr)
	})

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing DATABASE_URL", "DATABASE_URL", "", "DATABASE_URL is required"},
		{"missing REDIS_ADDR", "REDIS_ADDR", "", "REDIS_ADDR is required"},
		{"missing JWT_SECRET", "JWT_SECRET", "", "JWT_SECRET is required"},
		{"bad JWT_TTL", "JWT_TTL", "soon", `invalid JWT_TTL "soon"`},
		{"negative cache TTL", "FAVORITES_CACHE_TTL", "-1m", `invalid FAVORITES_CACHE_TTL "-1m"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadClient(t *testing.T) {
	base := func(t *testing.T) {
		for _, k := range []string{"API_URL", "TMDB_BASE_URL", "TMDB_IMAGE_BASE_URL", "DEEZER_BASE_URL", "CATALOG_TIMEOUT", "CATALOG_RPS"} {
			t.Setenv(k, "")
		}
		t.Setenv("TMDB_API_KEY", "key")
		t.Setenv("CLIENT_DATA_DIR", "")
		t.Setenv("HOME", "/home/tester")
	}

	t.Run("defaults", func(t *testing.T) {
		base(t)
		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", cfg.APIURL)
		assert.Equal(t, "key", cfg.TMDBAPIKey)
		assert.Equal(t, filepath.Join("/home/tester", ".media-favorites"), cfg.DataDir)
		assert.Equal(t, 10*time.Second, cfg.CatalogTimeout)
		assert.Zero(t, cfg.CatalogRPS)
	})

	t.Run("overrides", func(t *testing.T) {
		base(t)
		dir := t.TempDir()
		t.Setenv("API_URL", "https://api.example.com")
		t.Setenv("CLIENT_DATA_DIR", dir)
		t.Setenv("CATALOG_TIMEOUT", "3s")
		t.Setenv("CATALOG_RPS", "4.5")
		t.Setenv("DEEZER_BASE_URL", "http://deezer.test")

		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", cfg.APIURL)
		assert.Equal(t, dir, cfg.DataDir)
		assert.Equal(t, 3*time.Second, cfg.CatalogTimeout)
		assert.Equal(t, 4.5, cfg.CatalogRPS)
		assert.Equal(t, "http://deezer.test", cfg.DeezerBaseURL)
	})

	t.Run("missing TMDB key", func(t *testing.T) {
		base(t)
		t.Setenv("TMDB_API_KEY", "")
		_, err := LoadClient()
		assert.EqualError(t, err, "TMDB_API_KEY is required")
	})

	t.Run("bad RPS", func(t *testing.T) {
		base(t)
		t.Setenv("CATALOG_RPS", "0")
		_, err := LoadClient()
		assert.Error(t, err)
	})
}
