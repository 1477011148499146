package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Remote booking service configuration
	BookingService BookingServiceConfig

	// Payment redirect configuration
	Payment PaymentConfig

	// Database configuration (optional sales ledger)
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Wizard session configuration
	Session SessionConfig

	// Ticket printing configuration
	Ticket TicketConfig

	// Passenger input validation
	Validation ValidationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// BookingServiceConfig points at the remote booking REST API
type BookingServiceConfig struct {
	URL     string
	Timeout time.Duration
}

// PaymentConfig holds digital checkout settings
type PaymentConfig struct {
	ReturnURL string // where the provider sends the passenger after checkout
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Enabled reports whether a ledger database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SessionConfig controls how long idle wizards are kept
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepSchedule string // cron spec
}

// TicketConfig holds ticket printing settings
type TicketConfig struct {
	CompanyName string
	Currency    string
	FontPath    string // optional UTF-8 TTF; core fonts cover Latin-1 only
}

// ValidationConfig holds passenger input validation settings
type ValidationConfig struct {
	StrictPhone bool // reject phones that are not valid Sri Lankan mobiles
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		BookingService: BookingServiceConfig{
			URL:     strings.TrimRight(getEnv("BOOKING_SERVICE_URL", ""), "/"),
			Timeout: time.Duration(getEnvAsInt("BOOKING_SERVICE_TIMEOUT", 30)) * time.Second,
		},
		Payment: PaymentConfig{
			ReturnURL: getEnv("PAYMENT_RETURN_URL", ""),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Session: SessionConfig{
			IdleTimeout:   time.Duration(getEnvAsInt("SESSION_IDLE_TIMEOUT_MINUTES", 30)) * time.Minute,
			SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "*/5 * * * *"),
		},
		Ticket: TicketConfig{
			CompanyName: getEnv("TICKET_COMPANY_NAME", "Smart Transit"),
			Currency:    getEnv("TICKET_CURRENCY", "LKR"),
			FontPath:    getEnv("TICKET_FONT_PATH", ""),
		},
		Validation: ValidationConfig{
			StrictPhone: getEnvAsBool("STRICT_PHONE_VALIDATION", false),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BookingService.URL == "" {
		return fmt.Errorf("BOOKING_SERVICE_URL is required")
	}

	u, err := url.Parse(c.BookingService.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BOOKING_SERVICE_URL must be an absolute http(s) URL")
	}

	if c.BookingService.Timeout <= 0 {
		return fmt.Errorf("BOOKING_SERVICE_TIMEOUT must be positive")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT_MINUTES must be positive")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
