/*
Package config loads server configuration from an optional .env file and
TABLENEST_* environment variables.

PRECEDENCE (highest first):
  1. command-line flags (applied by cmd/server)
  2. variables already set in the environment
  3. values from the .env file
  4. defaults below

KEYS:
  TABLENEST_PORT           HTTP port                       8080
  TABLENEST_DB_PATH        SQLite database path            ./tablenest.db
  TABLENEST_JWT_SECRET     token signing secret            (required)
  TABLENEST_TOKEN_TTL      token lifetime, Go duration     24h
  TABLENEST_AMQP_URL       RabbitMQ URL; empty logs notifications instead
  TABLENEST_AMQP_EXCHANGE  notification exchange           notifications_fanout
  TABLENEST_TIMEZONE       IANA zone of the restaurants    Local
  TABLENEST_LOG_LEVEL      debug, info, warn or error      info
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const prefix = "TABLENEST_"

type Config struct {
	Port         int
	DBPath       string
	JWTSecret    string
	TokenTTL     time.Duration
	AMQPURL      string
	AMQPExchange string
	Timezone     *time.Location
	LogLevel     slog.Level
}

// Load reads envFile if it exists (a missing file is not an error) and then
// builds the configuration from the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		DBPath:       getEnvOrDefault("DB_PATH", "./tablenest.db"),
		JWTSecret:    getEnvOrDefault("JWT_SECRET", ""),
		AMQPURL:      getEnvOrDefault("AMQP_URL", ""),
		AMQPExchange: getEnvOrDefault("AMQP_EXCHANGE", "notifications_fanout"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnvOrDefault("PORT", "8080")); err != nil || cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid %sPORT %q", prefix, os.Getenv(prefix+"PORT"))
	}
	if cfg.TokenTTL, err = time.ParseDuration(getEnvOrDefault("TOKEN_TTL", "24h")); err != nil || cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid %sTOKEN_TTL %q", prefix, os.Getenv(prefix+"TOKEN_TTL"))
	}
	if cfg.Timezone, err = time.LoadLocation(getEnvOrDefault("TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("invalid %sTIMEZONE: %w", prefix, err)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid %sLOG_LEVEL: %w", prefix, err)
	}

	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%sJWT_SECRET must be set", prefix)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// getEnvOrDefault returns the prefixed environment variable or defaultValue.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(prefix + key); value != "" {
		return value
	}
	return defaultValue
}
