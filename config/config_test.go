package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 60*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Scraper.StaleAfter)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("SCRAPE_TIMEOUT", "15s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port, "invalid ints fall back to the default")
	assert.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	t.Run("production requires firebase credentials", func(t *testing.T) {
		cfg := &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Scraper:  ScraperConfig{Timeout: time.Second},
			App:      AppConfig{Environment: "production"},
		}
		assert.Error(t, cfg.Validate())

		cfg.Firebase.CredentialsPath = "/etc/listly/firebase.json"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("scrape timeout must be shorter than stale cutoff", func(t *testing.T) {
		cfg := &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Scraper:  ScraperConfig{Timeout: 15 * time.Minute, StaleAfter: 10 * time.Minute},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCRAPE_STALE_AFTER")

		cfg.Scraper.Timeout = 10 * time.Minute
		assert.Error(t, cfg.Validate())

		cfg.Scraper.Timeout = time.Minute
		assert.NoError(t, cfg.Validate())
	})

	t.Run("load rejects a timeout past the stale cutoff", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("SCRAPE_TIMEOUT", "20m")
		t.Setenv("SCRAPE_STALE_AFTER", "5m")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("database location is required", func(t *testing.T) {
		cfg := &Config{
			Server:  ServerConfig{Port: "8080"},
			Scraper: ScraperConfig{Timeout: time.Second},
		}
		assert.Error(t, cfg.Validate())
	})
}
