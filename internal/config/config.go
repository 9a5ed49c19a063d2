// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
)

// Config holds all service configuration, sourced from environment
// variables with an optional .env file.
type Config struct {
	Port     string
	LogLevel string

	DBPath       string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration

	RetentionDays int
	CleanupTime   string
	VacuumEnabled bool

	GeoIPCityDBPath string

	ClickQueueSize int
	ClickBatchSize int
}

// Load reads configuration from the environment. Missing values fall
// back to defaults suitable for a single-node deployment.
func Load(logger *pterm.Logger) *Config {
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded configuration from .env file")
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBPath:       getEnv("DB_PATH", "linklift.db"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 0),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 0),
		ConnMaxLife:  time.Duration(getEnvInt("DB_CONN_MAX_LIFE_MINUTES", 60)) * time.Minute,

		RetentionDays: getEnvInt("DB_RETENTION_DAYS", 0),
		CleanupTime:   getEnv("DB_CLEANUP_TIME", "02:00"),
		VacuumEnabled: getEnvBool("DB_VACUUM", false),

		GeoIPCityDBPath: getEnv("GEOIP_CITY_DB_PATH", ""),

		ClickQueueSize: getEnvInt("CLICK_QUEUE_SIZE", 4096),
		ClickBatchSize: getEnvInt("CLICK_BATCH_SIZE", 200),
	}
}

// Level maps the configured log level to a pterm level.
func (c *Config) Level() pterm.LogLevel {
	switch c.LogLevel {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
