package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver string
	DBSource string
	Port     string
	LogMode  string

	GooglePlacesAPIKey string
	RedisAddr          string

	// Recommendation policy, overridable per deployment
	GoodMinRating      float64
	CheapMaxPriceLevel int
	AnchorLimit        int
	TopCuisines        int
	AnchorTimeout      time.Duration
	CacheTTL           time.Duration

	// Enrichment worker pool + retry policy
	WorkerCount      int
	MaxAttempts      int
	BackoffBase      time.Duration
	TaskPollInterval time.Duration
	TaskTimeout      time.Duration

	// Periodic catalog sweep
	SweepInterval time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	return &Config{
		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBSource: getEnv("DB_SOURCE", "lunchlog.db"),
		Port:     getEnv("PORT", "8000"),
		LogMode:  getEnv("LOG_MODE", "dev"),

		GooglePlacesAPIKey: os.Getenv("GOOGLE_PLACES_API_KEY"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),

		GoodMinRating:      getEnvFloat("GOOD_MIN_RATING", 4.0),
		CheapMaxPriceLevel: getEnvInt("CHEAP_MAX_PRICE_LEVEL", 2),
		AnchorLimit:        getEnvInt("ANCHOR_LIMIT", 5),
		TopCuisines:        getEnvInt("TOP_CUISINES", 5),
		AnchorTimeout:      getEnvDuration("ANCHOR_TIMEOUT", 5*time.Second),
		CacheTTL:           getEnvDuration("RECOMMENDATION_CACHE_TTL", 10*time.Minute),

		WorkerCount:      getEnvInt("ENRICHMENT_WORKERS", 2),
		MaxAttempts:      getEnvInt("ENRICHMENT_MAX_ATTEMPTS", 3),
		BackoffBase:      getEnvDuration("ENRICHMENT_BACKOFF_BASE", time.Minute),
		TaskPollInterval: getEnvDuration("ENRICHMENT_POLL_INTERVAL", time.Second),
		TaskTimeout:      getEnvDuration("ENRICHMENT_TASK_TIMEOUT", 30*time.Second),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
	}
	return fallback
}
