package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int
	DBMinConns    int
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	CORSOrigin    string
}

func Load() *Config {
	// Best-effort .env loading; real env vars win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("No .env file loaded: %v", err)
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "tracker"),
		DBPassword:    getEnv("DB_PASSWORD", "tracker"),
		DBName:        getEnv("DB_NAME", "task_tracker"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBMaxConns:    getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:    getEnvInt("DB_MIN_CONNS", 2),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
