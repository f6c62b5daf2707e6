// Package config loads process configuration from the environment, with an
// optional .env file for local development, following the same
// environment-first convention the API server used for its Redis address.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting shared by the CLI and the API server.
type Config struct {
	RedisAddr   string
	ListenAddr  string
	APIKey      string
	WorkerCount int
	RateLimit   int64
	RateWindow  time.Duration
	DialTimeout time.Duration
	ReadTimeout time.Duration
	ResultTTL   time.Duration
	ExcludeFile string
	InfluxAddr  string
	InfluxDB    string

	// DialRatePerSecond caps how many probe connections this process opens
	// per second; 0 (the default) leaves dialing unlimited.
	DialRatePerSecond float64
	DialBurst         int
}

// Load reads .env (if present) and then the process environment, applying
// defaults for anything unset. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		APIKey:      getenv("API_KEY", ""),
		WorkerCount: getenvInt("WORKER_COUNT", 5),
		RateLimit:   int64(getenvInt("RATE_LIMIT", 60)),
		RateWindow:  getenvDuration("RATE_WINDOW", time.Minute),
		DialTimeout: getenvDuration("DIAL_TIMEOUT", 3*time.Second),
		ReadTimeout: getenvDuration("READ_TIMEOUT", 3*time.Second),
		ResultTTL:   getenvDuration("RESULT_CACHE_TTL", 30*time.Second),
		ExcludeFile: getenv("EXCLUDE_FILE", ""),
		InfluxAddr:  getenv("INFLUX_ADDR", ""),
		InfluxDB:    getenv("INFLUX_DB", "svcprobe"),

		DialRatePerSecond: getenvFloat("DIAL_RATE_PER_SECOND", 0),
		DialBurst:         getenvInt("DIAL_BURST", 50),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
