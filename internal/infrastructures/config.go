package infrastructures

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	APP_PORT                 string
	DB_DRIVER                string
	DATABASE_URL             string
	DB_MAX_OPEN_CONNS        int
	DB_MAX_IDLE_CONNS        int
	DB_CONN_MAX_LIFETIME_MIN int
	DB_AUTO_MIGRATE          bool
	REDIS_ADDRESS            string
	REDIS_PASSWORD           string
	REDIS_DB                 int
	JWT_SECRET               string
	TX_TIMEOUT               time.Duration
	POST_COMMIT_WORKERS      int
	POST_COMMIT_QUEUE_SIZE   int
	EVENT_CHANNEL            string
	RATE_LIMIT_PREFIX        string
	LOG_LEVEL                string
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		APP_PORT:                 getEnv("APP_PORT", "8080"),
		DB_DRIVER:                getEnv("DB_DRIVER", "postgres"),
		DATABASE_URL:             os.Getenv("DATABASE_URL"),
		DB_MAX_OPEN_CONNS:        getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DB_MAX_IDLE_CONNS:        getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DB_CONN_MAX_LIFETIME_MIN: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		DB_AUTO_MIGRATE:          getEnvBool("DB_AUTO_MIGRATE", false),
		REDIS_ADDRESS:            getEnv("REDIS_ADDRESS", "localhost:6379"),
		REDIS_PASSWORD:           os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:                 getEnvInt("REDIS_DB", 0),
		JWT_SECRET:               os.Getenv("JWT_SECRET"),
		TX_TIMEOUT:               time.Duration(getEnvInt("TX_TIMEOUT_MS", 5000)) * time.Millisecond,
		POST_COMMIT_WORKERS:      getEnvInt("POST_COMMIT_WORKERS", 4),
		POST_COMMIT_QUEUE_SIZE:   getEnvInt("POST_COMMIT_QUEUE_SIZE", 256),
		EVENT_CHANNEL:            getEnv("EVENT_CHANNEL", "tourism:events"),
		RATE_LIMIT_PREFIX:        getEnv("RATE_LIMIT_PREFIX", "tourism"),
		LOG_LEVEL:                getEnv("LOG_LEVEL", "info"),
	}

	return Config
}

// ProvideConfig hands the loaded configuration to the injector, loading it on
// first use.
func ProvideConfig() *AppConfig {
	if Config == nil {
		return LoadConfig()
	}
	return Config
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
