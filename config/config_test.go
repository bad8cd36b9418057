package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Should require a database URL for postgres", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("Should accept the memory driver with defaults", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "Memory")
		t.Setenv("FRONTEND_URL", "http://localhost:4200/")
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://contacts.example.com/ , ,http://127.0.0.1:4200")
		t.Setenv("RATE_LIMIT_THRESHOLD", "not-a-number")
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "9")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
		assert.Equal(t, []string{
			"http://localhost:4200",
			"https://contacts.example.com",
			"http://127.0.0.1:4200",
		}, cfg.AllowedOrigins)
		assert.Equal(t, 300, cfg.RateLimitThreshold)
		assert.Equal(t, 9*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("Should reject unknown drivers", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unknown STORE_DRIVER")
	})

	t.Run("Should clamp min connections to max", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "postgres://localhost/contacts")
		t.Setenv("DB_MAX_CONNS", "3")
		t.Setenv("DB_MIN_CONNS", "10")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.DBMinConns)
	})
}
