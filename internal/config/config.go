package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultBackendURL = "http://103.249.117.201:12732"

type Config struct {
	AppEnv              string
	LogLevel            string
	HTTPPort            string
	GRPCPort            string
	BackendURL          string
	BackendTimeout      time.Duration
	RedisAddr           string
	MySQLDSN            string
	StatsExportInterval time.Duration
	JWTSecret           string
	JWTExpiry           time.Duration
}

// Load reads .env (if present) and the environment. The returned bool is
// false when no .env file was found.
func Load() (*Config, bool, error) {
	envFound := godotenv.Load() == nil

	backendTimeout, err := getDuration("BACKEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, envFound, err
	}
	exportInterval, err := getDuration("STATS_EXPORT_INTERVAL", time.Hour)
	if err != nil {
		return nil, envFound, err
	}
	jwtExpiry, err := getDuration("JWT_EXPIRY", 24*time.Hour)
	if err != nil {
		return nil, envFound, err
	}

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		GRPCPort:            getEnv("GRPC_PORT", "50051"),
		BackendURL:          getEnv("BACKEND_URL", defaultBackendURL),
		BackendTimeout:      backendTimeout,
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		MySQLDSN:            os.Getenv("MYSQL_DSN"),
		StatsExportInterval: exportInterval,
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		JWTExpiry:           jwtExpiry,
	}
	return cfg, envFound, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}
