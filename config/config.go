package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListingAPIBaseURL string
	CategoryLimit     int
	HTTPTimeout       time.Duration
	MaxConcurrency    int

	ListenAddr string
	WebBaseURL string
	ChromeBin  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CSVOutputPath  string
	ExportSchedule string

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListingAPIBaseURL: getEnv("LISTING_API_BASE_URL", "http://localhost:3000"),
		CategoryLimit:     getEnvInt("CATEGORY_LIMIT", 4),
		HTTPTimeout:       time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 10000)) * time.Millisecond,
		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", 3),

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		WebBaseURL: getEnv("WEB_BASE_URL", "http://localhost:5173"),
		ChromeBin:  getEnv("CHROME_BIN", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "estate"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "estate123"),
		PostgresDB:       getEnv("POSTGRES_DB", "estate_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/home_feed.csv"),
		ExportSchedule: getEnv("EXPORT_SCHEDULE", "@every 6h"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports configuration values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ListingAPIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("LISTING_API_BASE_URL must be an absolute http(s) URL, got %q", c.ListingAPIBaseURL))
	}
	if c.CategoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("CATEGORY_LIMIT must be positive, got %d", c.CategoryLimit))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT_MS must be positive, got %v", c.HTTPTimeout))
	}
	if c.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
		log.Printf("[config] %s=%q is not an integer, using %d", key, val, fallback)
	}
	return fallback
}
