package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Scraper  ScraperConfig
	Export   ExportConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
	// ProjectID overrides the project id read from the credentials file.
	ProjectID string
}

type ScraperConfig struct {
	// RemoteURL selects the remote scrape service; empty means pages are fetched directly.
	RemoteURL   string
	RemoteKey   string
	UserAgent   string
	Timeout     time.Duration
	StaleAfter  time.Duration
	CacheTTL    time.Duration
	RatePerSec  float64
	Burst       int
	ChromeAllow bool
	// SweepSchedule is the cron spec (with seconds) for failing stuck scrapes.
	SweepSchedule string
}

type ExportConfig struct {
	S3Bucket string
	S3Region string
	S3Prefix string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "listly"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),

			AutoMigrate: getEnv("DB_AUTO_MIGRATE", "false") == "true",
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Scraper: ScraperConfig{
			RemoteURL:   getEnv("SCRAPER_URL", ""),
			RemoteKey:   getEnv("SCRAPER_API_KEY", ""),
			UserAgent:   getEnv("SCRAPER_USER_AGENT", "listly/1.0 (+https://listly.app/bot)"),
			Timeout:     getEnvAsDuration("SCRAPE_TIMEOUT", 60*time.Second),
			StaleAfter:  getEnvAsDuration("SCRAPE_STALE_AFTER", 10*time.Minute),
			CacheTTL:    getEnvAsDuration("SCRAPE_CACHE_TTL", 10*time.Minute),
			RatePerSec:  getEnvAsFloat("SCRAPE_RATE_PER_SEC", 2),
			Burst:       getEnvAsInt("SCRAPE_BURST", 4),
			ChromeAllow: getEnv("SCRAPE_CHROME", "false") == "true",

			SweepSchedule: getEnv("SCRAPE_SWEEP_SCHEDULE", "0 * * * * *"),
		},
		Export: ExportConfig{
			S3Bucket: getEnv("EXPORT_S3_BUCKET", ""),
			S3Region: getEnv("EXPORT_S3_REGION", "us-east-1"),
			S3Prefix: getEnv("EXPORT_S3_PREFIX", "exports/"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "listly-api"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.App.Environment == "production" && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required in production")
	}

	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("SCRAPE_TIMEOUT must be positive")
	}

	// The sweeper would fail scrapes that are still inside their timeout.
	if c.Scraper.StaleAfter > 0 && c.Scraper.Timeout >= c.Scraper.StaleAfter {
		return fmt.Errorf("SCRAPE_TIMEOUT (%s) must be shorter than SCRAPE_STALE_AFTER (%s)",
			c.Scraper.Timeout, c.Scraper.StaleAfter)
	}

	return nil
}

// IsDevelopment reports whether dev-only conveniences (header auth) are allowed.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "test"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
