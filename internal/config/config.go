package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // mysql, postgres or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBPath     string // SQLite file path
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address, empty disables cache and events
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	AllowNegativeBalance bool          // Let wallet balances go below zero
	BalanceRetryLimit    int           // Attempts per unit of work on version conflicts
	SettlementCacheTTL   time.Duration // Lifetime of cached settlement summaries
	SharingRequestTTL    time.Duration // Age after which a pending join request expires
	ExpirerInterval      time.Duration // How often the sharing expirer runs
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),         // Application port
		DBDriver:   getEnv("DB_DRIVER", DriverMySQL),   // Database driver
		DBUser:     os.Getenv("DB_USER"),               // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),           // Database password
		DBHost:     getEnv("DB_HOST", "localhost"),     // Database host
		DBPort:     os.Getenv("DB_PORT"),               // Database port
		DBName:     os.Getenv("DB_NAME"),               // Database name
		DBPath:     getEnv("DB_PATH", "finance.db"),    // SQLite file
		JWTSecret:  os.Getenv("JWT_SECRET"),            // JWT secret key
		RedisAddr:  os.Getenv("REDIS_ADDR"),            // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),            // Redis password
		RedisDB:    getInt("REDIS_DB", 0),              // Redis database number
		IsProd:     getBool("IS_PROD", false),          // Is production environment

		AllowNegativeBalance: getBool("ALLOW_NEGATIVE_BALANCE", false),
		BalanceRetryLimit:    getInt("BALANCE_RETRY_LIMIT", 3),
		SettlementCacheTTL:   getDuration("SETTLEMENT_CACHE_TTL", 5*time.Minute),
		SharingRequestTTL:    getDuration("SHARING_REQUEST_TTL", 7*24*time.Hour),
		ExpirerInterval:      getDuration("EXPIRER_INTERVAL", time.Hour),
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	case DriverSQLite:
		return c.DBPath
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

// getEnv returns the variable or def when unset
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
