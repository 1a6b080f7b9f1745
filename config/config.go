package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Redis     RedisConfig
	CORS      CORSConfig
	StockGate StockGateConfig
	Stockd    StockdConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// StockGateConfig controls the pre-commit stock check that runs before an
// item is added to a cart. When STOCK_GATE_ENABLED is unset the gate is
// active only in development, matching how the storefront ran its
// stock-check socket.
type StockGateConfig struct {
	Enabled    bool
	URL        string
	Timeout    time.Duration
	FailClosed bool
}

// StockdConfig configures the stock authority process (cmd/stockd).
type StockdConfig struct {
	Port string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: environment,
		},
		Catalog: CatalogConfig{
			BaseURL: getEnv("CATALOG_BASE_URL", "https://dummyjson.com"),
			Timeout: parseDuration(getEnv("CATALOG_TIMEOUT", "10s"), 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		StockGate: StockGateConfig{
			Enabled:    parseBool(getEnv("STOCK_GATE_ENABLED", ""), environment == "development"),
			URL:        getEnv("STOCK_GATE_URL", "ws://localhost:4000/ws"),
			Timeout:    parseDuration(getEnv("STOCK_GATE_TIMEOUT", "5s"), 5*time.Second),
			FailClosed: parseBool(getEnv("STOCK_GATE_FAIL_CLOSED", "false"), false),
		},
		Stockd: StockdConfig{
			Port: getEnv("STOCKD_PORT", "4000"),
		},
	}

	return config, nil
}

// Addr returns the host:port address of the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %q, using default %s", s, defaultValue)
		return defaultValue
	}
	return duration
}

func parseInt(s string, defaultValue int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %q, using default %d", s, defaultValue)
		return defaultValue
	}
	return n
}

func parseBool(s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Invalid boolean %q, using default %t", s, defaultValue)
		return defaultValue
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
