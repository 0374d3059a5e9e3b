package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"holdagent/internal/cache"
	"holdagent/internal/external"
	"holdagent/internal/messaging"
	"holdagent/internal/service"
	"holdagent/internal/warnings"
)

// Config содержит конфигурацию агента
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	MetricsEnabled bool

	Session     service.BridgeConfig
	MaxSeats    int
	Warnings    warnings.Config
	Reservation external.ReservationConfig
	Redis       cache.Config
	NATS        messaging.Config
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8081"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		Session: service.BridgeConfig{
			EventID:   getEnv("EVENT_ID", ""),
			SessionID: getEnv("SESSION_ID", ""),
			UserID:    getEnv("USER_ID", ""),
		},
		MaxSeats: getEnvInt("MAX_SELECTED_SEATS", 10),

		Warnings: warnings.Config{
			TickInterval: time.Duration(getEnvInt("HOLD_TICK_MS", 1000)) * time.Millisecond,
			InfoAt:       time.Duration(getEnvInt("HOLD_INFO_SEC", 300)) * time.Second,
			WarningAt:    time.Duration(getEnvInt("HOLD_WARNING_SEC", 120)) * time.Second,
			CriticalAt:   time.Duration(getEnvInt("HOLD_CRITICAL_SEC", 30)) * time.Second,
		},

		Reservation: external.ReservationConfig{
			BaseURL: getEnv("RESERVATION_API_URL", "http://localhost:8080"),
			Timeout: time.Duration(getEnvInt("RESERVATION_TIMEOUT_SEC", 30)) * time.Second,
		},

		// Пустой адрес отключает снимки в Redis
		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		// Пустой URL отключает публикацию событий
		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", ""),
			ClusterID: getEnv("NATS_CLUSTER_ID", "holdagent"),
			ClientID:  getEnv("NATS_CLIENT_ID", "holdagent"),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool понимает true/false/1/0/yes/no
func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
