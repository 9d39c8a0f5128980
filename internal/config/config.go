package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// QA Gateway
	GatewayMode       string // "http" | "gemini"
	GatewayBaseURL    string
	GatewayTimeoutSec int

	// Gemini (only used when GATEWAY_MODE=gemini)
	GeminiAPIKey string
	GeminiModel  string

	// Workers
	WorkerCount int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DatabaseURL:       mustGetEnv("DATABASE_URL"),
		RedisURL:          mustGetEnv("REDIS_URL"),
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		GatewayMode:       getEnvOrDefault("GATEWAY_MODE", "http"),
		GatewayBaseURL:    getEnvOrDefault("GATEWAY_BASE_URL", "http://localhost:9000"),
		GatewayTimeoutSec: getEnvAsIntOrDefault("GATEWAY_TIMEOUT_SECONDS", 60),
		GeminiAPIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		WorkerCount:       getEnvAsIntOrDefault("WORKER_COUNT", 3),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.GatewayMode == "gemini" && cfg.GeminiAPIKey == "" {
		panic("GEMINI_API_KEY is required when GATEWAY_MODE=gemini")
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
