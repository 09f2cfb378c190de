// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application settings.
type Config struct {
	AppEnv   string
	LogLevel string

	// UserID identifies the board owner in single-user local mode.
	UserID string

	// DatabaseURL selects postgres when set; empty means local SQLite.
	DatabaseURL string
	SQLitePath  string

	// RedisURL enables the distributed sync lease when set.
	RedisURL string

	// RabbitMQURL enables the broker publisher when set.
	RabbitMQURL string

	// Calendar sync
	SyncWindowPast     time.Duration
	SyncWindowFuture   time.Duration
	SyncStaleThreshold time.Duration
	SyncInterval       time.Duration
	SyncPageSize       int

	// Google Calendar OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	// CalDAV
	CalDAVEndpoint string
	CalDAVUsername string
	CalDAVPassword string

	// Scheduling
	PlanBufferMinutes      int
	PlanDefaultTaskMinutes int
	PlanMaxTasks           int

	// WorkerHealthAddr exposes the worker's health endpoints when set,
	// e.g. ":8081".
	WorkerHealthAddr string
}

// Load reads configuration from the environment, with a .env file
// applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("TIMEBOARD_LOG_LEVEL", "info"),
		UserID:   getEnv("TIMEBOARD_USER_ID", "00000000-0000-0000-0000-000000000001"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("TIMEBOARD_SQLITE_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		SyncWindowPast:     getDurationEnv("SYNC_WINDOW_PAST", 30*24*time.Hour),
		SyncWindowFuture:   getDurationEnv("SYNC_WINDOW_FUTURE", 14*24*time.Hour),
		SyncStaleThreshold: getDurationEnv("SYNC_STALE_THRESHOLD", 15*time.Minute),
		SyncInterval:       getDurationEnv("SYNC_INTERVAL", 5*time.Minute),
		SyncPageSize:       getIntEnv("SYNC_PAGE_SIZE", 250),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		CalDAVEndpoint: getEnv("CALDAV_ENDPOINT", ""),
		CalDAVUsername: getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword: getEnv("CALDAV_PASSWORD", ""),

		PlanBufferMinutes:      getIntEnv("PLAN_BUFFER_MINUTES", 15),
		PlanDefaultTaskMinutes: getIntEnv("PLAN_DEFAULT_TASK_MINUTES", 30),
		PlanMaxTasks:           getIntEnv("PLAN_MAX_TASKS", 30),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", ""),
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
