package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	// CountPendingApprovals decides whether a completed task awaiting
	// approval still counts toward progress.
	CountPendingApprovals bool

	// RecalcLockTimeout bounds the wait for a booking's recalculation lock.
	RecalcLockTimeout time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:              getEnv("DB_DRIVER", "mysql"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "3306"),
		DBUser:                getEnv("DB_USER", "bookinguser"),
		DBPassword:            getEnv("DB_PASSWORD", "bookingpassword"),
		DBName:                getEnv("DB_NAME", "booking_platform"),
		RedisHost:             getEnv("REDIS_HOST", "localhost"),
		RedisPort:             getEnv("REDIS_PORT", "6379"),
		SessionSecret:         getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		CountPendingApprovals: getEnvBool("PROGRESS_COUNT_PENDING_APPROVALS", true),
		RecalcLockTimeout:     time.Duration(getEnvInt("RECALC_LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
