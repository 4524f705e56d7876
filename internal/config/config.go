package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv               string
	APIBaseURL           string
	RequestTimeout       time.Duration
	ServiceChargePercent float64
	CartStore            string // "file" or "redis"
	CartStorePath        string
	CartSlot             string
	RedisAddr            string
	BreakerEnabled       bool
}

const (
	CartStoreFile  = "file"
	CartStoreRedis = "redis"
)

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:               os.Getenv("APP_ENV"),
		APIBaseURL:           os.Getenv("POS_API_URL"),
		RequestTimeout:       durationEnv("POS_HTTP_TIMEOUT", 15*time.Second),
		ServiceChargePercent: floatEnv("SERVICE_CHARGE_PERCENT", 0),
		CartStore:            getEnv("CART_STORE", CartStoreFile),
		CartStorePath:        os.Getenv("CART_STORE_PATH"),
		CartSlot:             getEnv("CART_SLOT", "warimas:pos:cart"),
		RedisAddr:            getEnv("CART_REDIS_ADDR", "localhost:6379"),
		BreakerEnabled:       getEnv("CIRCUIT_BREAKER", "1") == "1",
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("POS_API_URL not set, environment variables not loaded properly")
	}

	if cfg.ServiceChargePercent < 0 || cfg.ServiceChargePercent > 100 {
		log.Fatalf("SERVICE_CHARGE_PERCENT must be between 0 and 100, got %v", cfg.ServiceChargePercent)
	}

	if cfg.CartStore != CartStoreFile && cfg.CartStore != CartStoreRedis {
		log.Fatalf("CART_STORE must be %q or %q, got %q", CartStoreFile, CartStoreRedis, cfg.CartStore)
	}

	if cfg.CartStorePath == "" {
		cfg.CartStorePath = defaultCartPath()
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s is not a valid duration: %v", key, err)
	}
	return d
}

func floatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("%s is not a valid number: %v", key, err)
	}
	return f
}

func defaultCartPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// last resort, keep the slot in the working directory
		return "pos-cart.json"
	}
	return filepath.Join(home, ".warimas-pos", "cart.json")
}
