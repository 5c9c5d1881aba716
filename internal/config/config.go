package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	ServicePort int
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL                string
	PointValueExchange string
	PointValueQueue    string
	PointValueKey      string
	AlarmExchange      string
	AlarmOpenedKey     string
	AlarmClosedKey     string
	DLQQueue           string
	PrefetchCount      int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "plc-alarm-worker"),
		ServicePort: getEnvAsInt("SERVICE_PORT", 8082),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:                getEnv("RABBITMQ_URL", ""),
			PointValueExchange: getEnv("RABBITMQ_POINT_VALUE_EXCHANGE", "plc-alarm.point-values.exchange"),
			PointValueQueue:    getEnv("RABBITMQ_POINT_VALUE_QUEUE", "plc-alarm.point-values.queue"),
			PointValueKey:      getEnv("RABBITMQ_POINT_VALUE_ROUTING_KEY", "point.value.sampled"),
			AlarmExchange:      getEnv("RABBITMQ_ALARM_EXCHANGE", "plc-alarm.transitions.exchange"),
			AlarmOpenedKey:     getEnv("RABBITMQ_ALARM_OPENED_ROUTING_KEY", "alarm.opened"),
			AlarmClosedKey:     getEnv("RABBITMQ_ALARM_CLOSED_ROUTING_KEY", "alarm.closed"),
			DLQQueue:           getEnv("RABBITMQ_DLQ_QUEUE", "plc-alarm.point-values.dlq"),
			PrefetchCount:      getEnvAsInt("RABBITMQ_PREFETCH", 10),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required but not set in environment variables")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
