package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Platform owner: the single principal with owner-level ticket
	// invalidation rights, set at construction.
	PlatformOwner string

	// Redis configuration (snapshot store)
	RedisURL      string
	RedisPassword string
	RedisDB       int
	SnapshotKey   string

	// Snapshot loop
	SnapshotInterval time.Duration

	// PubNub configuration (activity notifications)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubUserID       string

	// Monitoring
	EnableMetrics   bool
	MetricsPort     string
	MetricsInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Platform owner
		PlatformOwner: getEnv("PLATFORM_OWNER", "platform-owner"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		SnapshotKey:   getEnv("SNAPSHOT_KEY", "marketplace:snapshot"),

		// Snapshot loop
		SnapshotInterval: getEnvAsDuration("SNAPSHOT_INTERVAL", "1m"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "ticket-marketplace"),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", "30s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
