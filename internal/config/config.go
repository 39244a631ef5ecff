package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	RedisURL           string
	ListenAddr         string
	Environment        string        // "production" enables secure cookies
	GrantSecret        string        // Secret key for signing verification grants
	GeoIPDBPath        string        // Optional path to a MaxMind City database
	CacheTTL           time.Duration // TTL for cached targets and hit shadows
	RedirectRateLimit  int64         // Max redirect requests per client per window
	RedirectRateWindow time.Duration // Fixed rate-limit window length
	VerifyRateRPS      float64       // In-process limit for password attempts (requests per second)
	VerifyRateBurst    int           // Burst size for password attempts
	VisitWorkers       int           // Visit logger worker count
	VisitQueueSize     int           // Visit logger queue bound
	HitSyncInterval    time.Duration // How often cached hits are folded into the store
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		GrantSecret:        getEnv("GRANT_SECRET", ""),
		GeoIPDBPath:        getEnv("GEOIP_DB_PATH", ""),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		RedirectRateLimit:  int64(getEnvInt("REDIRECT_RATE_LIMIT", 1000)),
		RedirectRateWindow: time.Duration(getEnvInt("REDIRECT_RATE_WINDOW_MS", 60000)) * time.Millisecond,
		VerifyRateRPS:      getEnvFloat("VERIFY_RATE_RPS", 2),
		VerifyRateBurst:    getEnvInt("VERIFY_RATE_BURST", 5),
		VisitWorkers:       getEnvInt("VISIT_WORKERS", 2),
		VisitQueueSize:     getEnvInt("VISIT_QUEUE_SIZE", 1024),
		HitSyncInterval:    time.Duration(getEnvInt("HIT_SYNC_INTERVAL_SECONDS", 300)) * time.Second,
	}
}

// Production reports whether the service runs with production hardening.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
