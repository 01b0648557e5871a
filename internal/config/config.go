package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	ClinicTimezone string

	// Booking rules
	BookingWindowDays        int
	AvailabilityPollInterval time.Duration
	DashboardPollInterval    time.Duration

	// Staff access gate. A shared credential pair, not an identity system;
	// see DESIGN.md before pointing real traffic at this.
	StaffUsername     string
	StaffPassword     string
	StaffTokenSecret  string
	StaffSessionTTL   time.Duration
	RememberDeviceTTL time.Duration

	RedisAddr     string
	RedisPassword string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ClinicTimezone: getEnv("CLINIC_TZ", "UTC"),

		BookingWindowDays:        getEnvAsInt("BOOKING_WINDOW_DAYS", 30),
		AvailabilityPollInterval: getEnvAsDuration("AVAILABILITY_POLL_INTERVAL", 10*time.Second),
		DashboardPollInterval:    getEnvAsDuration("DASHBOARD_POLL_INTERVAL", 30*time.Second),

		StaffUsername:     getEnv("STAFF_USERNAME", ""),
		StaffPassword:     getEnv("STAFF_PASSWORD", ""),
		StaffTokenSecret:  getEnv("STAFF_TOKEN_SECRET", ""),
		StaffSessionTTL:   getEnvAsDuration("STAFF_SESSION_TTL", 12*time.Hour),
		RememberDeviceTTL: getEnvAsDuration("REMEMBER_DEVICE_TTL", 30*24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
