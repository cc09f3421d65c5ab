package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Mirror  MirrorConfig
	Redis   RedisConfig
	Log     LogConfig
	Refresh RefreshConfig
	Notify  NotifyConfig
}

type APIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	AccessToken string
}

type MirrorConfig struct {
	Backend    string // file, redis, memory
	FilePath   string
	StorageKey string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

type RefreshConfig struct {
	Enabled  bool
	CronSpec string
}

type NotifyConfig struct {
	Enabled bool
	URL     string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		API: APIConfig{
			BaseURL:     getEnv("LIBRARY_API_BASE_URL", "http://localhost:8080"),
			Timeout:     parseDuration(getEnv("LIBRARY_API_TIMEOUT", "30s")),
			AccessToken: getEnv("LIBRARY_ACCESS_TOKEN", ""),
		},
		Mirror: MirrorConfig{
			Backend:    getEnv("CART_MIRROR_BACKEND", "file"),
			FilePath:   getEnv("CART_MIRROR_FILE", defaultMirrorPath()),
			StorageKey: getEnv("CART_MIRROR_KEY", "borrowcart:cart"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Refresh: RefreshConfig{
			Enabled:  parseBool(getEnv("CART_REFRESH_ENABLED", "true")),
			CronSpec: getEnv("CART_REFRESH_CRON", "*/5 * * * *"),
		},
		Notify: NotifyConfig{
			Enabled: parseBool(getEnv("CART_NOTIFY_ENABLED", "false")),
			URL:     getEnv("CART_NOTIFY_URL", "ws://localhost:8080/api/v1/events"),
		},
	}

	return config, nil
}

func defaultMirrorPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".borrowcart/cart.json"
	}
	return home + "/.borrowcart/cart.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration %q, using 30s", value)
		return 30 * time.Second
	}
	return d
}

func parseInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
