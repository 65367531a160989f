package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Crawl    CrawlConfig
	Browser  BrowserConfig
	Output   OutputConfig
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

type CrawlConfig struct {
	StartURL        string
	MaxPages        int
	PageDelay       time.Duration
	SettleDelay     time.Duration
	WaitTimeout     time.Duration
	SelectorsFile   string
	DedupeCacheSize int
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type OutputConfig struct {
	RawDir       string
	ProcessedDir string
	DedupeLatest bool
}

type ServerConfig struct {
	Enabled bool
	Addr    string
}

type RedisConfig struct {
	Enabled bool
	Addr    string
	DB      int
	Channel string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, sourcing a local .env file
// first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Crawl: CrawlConfig{
			StartURL:        getEnvOrDefault("SCRAPE_START_URL", ""),
			MaxPages:        getIntOrDefault("SCRAPE_MAX_PAGES", 50),
			PageDelay:       getDurationOrDefault("SCRAPE_PAGE_DELAY", time.Second),
			SettleDelay:     getDurationOrDefault("SCRAPE_SETTLE_DELAY", 200*time.Millisecond),
			WaitTimeout:     getDurationOrDefault("SCRAPE_WAIT_TIMEOUT", 20*time.Second),
			SelectorsFile:   getEnvOrDefault("SCRAPE_SELECTORS_FILE", ""),
			DedupeCacheSize: getIntOrDefault("SCRAPE_DEDUPE_CACHE_SIZE", 4096),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-CA,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/Toronto"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-CA"),
		},
		Output: OutputConfig{
			RawDir:       getEnvOrDefault("OUTPUT_RAW_DIR", "data/raw"),
			ProcessedDir: getEnvOrDefault("OUTPUT_PROCESSED_DIR", "data/processed"),
			DedupeLatest: getBoolOrDefault("OUTPUT_DEDUPE_LATEST", false),
		},
		Server: ServerConfig{
			Enabled: getBoolOrDefault("SERVER_ENABLED", false),
			Addr:    getEnvOrDefault("SERVER_ADDR", ":8080"),
		},
		Redis: RedisConfig{
			Enabled: getBoolOrDefault("REDIS_ENABLED", false),
			Addr:    getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			DB:      getIntOrDefault("REDIS_DB", 0),
			Channel: getEnvOrDefault("REDIS_CHANNEL", "snapshots"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "listing_snapshot"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawl.MaxPages < 1 {
		return fmt.Errorf("SCRAPE_MAX_PAGES must be at least 1")
	}

	if c.Crawl.PageDelay < 0 {
		return fmt.Errorf("SCRAPE_PAGE_DELAY cannot be negative")
	}

	if c.Crawl.WaitTimeout <= 0 {
		return fmt.Errorf("SCRAPE_WAIT_TIMEOUT must be positive")
	}

	if c.Crawl.DedupeCacheSize < 1 {
		return fmt.Errorf("SCRAPE_DEDUPE_CACHE_SIZE must be at least 1")
	}

	if c.Output.RawDir == "" {
		return fmt.Errorf("OUTPUT_RAW_DIR cannot be empty")
	}

	if c.Output.ProcessedDir == "" {
		return fmt.Errorf("OUTPUT_PROCESSED_DIR cannot be empty")
	}

	return nil
}

// DSN builds a pgx connection string from the database settings.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
