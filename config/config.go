package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Password       string // default share password
	OutputDir      string // default output directory
	TimeoutSeconds int    // HTTP timeout for listing and transfers
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	timeout, err := strconv.Atoi(getEnv("NC_TIMEOUT", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid NC_TIMEOUT value: %w", err)
	}

	config := &Config{
		Password:       getEnv("NC_SHARE_PASSWORD", ""),
		OutputDir:      getEnv("NC_OUTPUT", "."),
		TimeoutSeconds: timeout,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
