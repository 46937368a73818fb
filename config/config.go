package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	StorageType string // "csv" or "postgres"

	MaxConcurrency    int
	RateLimitMs       int
	MaxRetries        int
	RequestTimeoutSec int
	MaxPages          int
	ProductsPerPage   int

	CSVOutputDir string
	LogFile      string
	ChromeBin    string
	UserAgent    string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "grocery_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		StorageType: strings.ToLower(getEnv("STORAGE_TYPE", "csv")),

		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:       getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		MaxPages:          getEnvInt("MAX_PAGES", 20),
		ProductsPerPage:   getEnvInt("PRODUCTS_PER_PAGE", 24),

		CSVOutputDir: getEnv("CSV_OUTPUT_DIR", "./output"),
		LogFile:      getEnv("LOG_FILE", ""),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	}
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

// Category is one scrape target within a site.
type Category struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SiteConfig holds the per-site scrape targets from the YAML config file.
type SiteConfig struct {
	BaseURL    string     `yaml:"base_url"`
	Categories []Category `yaml:"categories"`
}

// Sites maps a scraper type ("meny", "oda") to its configuration.
type Sites map[string]SiteConfig

// LoadSites reads the YAML site configuration. Relative category URLs are
// resolved against the site's base URL.
func LoadSites(path string) (Sites, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var doc struct {
		Scraper Sites `yaml:"scraper"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	for name, site := range doc.Scraper {
		for i, cat := range site.Categories {
			if cat.URL != "" && !strings.HasPrefix(cat.URL, "http://") && !strings.HasPrefix(cat.URL, "https://") {
				site.Categories[i].URL = strings.TrimRight(site.BaseURL, "/") + cat.URL
			}
		}
		doc.Scraper[name] = site
	}

	return doc.Scraper, nil
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
	}
	return fallback
}
