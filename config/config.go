package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"rooms-aggregator/models"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// MaxPages is the process-wide page budget ceiling, always within [1, 10].
	MaxPages     int
	DefaultPages int
	PageDelay    time.Duration
	NavTimeout   time.Duration
	WaitTimeout  time.Duration
	MaxRetries   int
	Parallel     bool

	City     string
	Currency string

	Headless  bool
	ChromeBin string
	LogLevel  string

	CSVOutputPath  string
	JSONOutputPath string
	StoreResults   bool
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
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxPages:     models.ClampPages(getEnvInt("MAX_PAGES", models.MaxPagesLimit), models.MaxPagesLimit),
		DefaultPages: getEnvInt("DEFAULT_PAGES", 1),
		PageDelay:    getEnvMillis("PAGE_DELAY_MS", 750),
		NavTimeout:   getEnvMillis("NAV_TIMEOUT_MS", 45000),
		WaitTimeout:  getEnvMillis("WAIT_TIMEOUT_MS", 10000),
		MaxRetries:   getEnvInt("MAX_RETRIES", 2),
		Parallel:     getEnvBool("PARALLEL_SOURCES", true),

		City:     getEnv("CITY", "warszawa"),
		Currency: getEnv("CURRENCY", "PLN"),

		Headless:  getEnvBool("HEADLESS", true),
		ChromeBin: getEnv("CHROME_BIN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", ""),
		JSONOutputPath: getEnv("JSON_OUTPUT_PATH", ""),
		StoreResults:   getEnvBool("STORE_RESULTS", false),
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
		log.Printf("[config] %s=%q is not a boolean, using %t", key, val, fallback)
	}
	return fallback
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
