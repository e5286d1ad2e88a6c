package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects the key-value backend holding the post collection.
type StoreConfig struct {
	Backend    string // memory|sqlite|redis|mongo
	Key        string
	SQLitePath string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// ExportConfig selects where saved exports go.
type ExportConfig struct {
	Backend string // dir|minio
	Dir     string
	// PDFFont is an optional TrueType file for PDF text.
	PDFFont string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

var storeBackends = map[string]bool{"memory": true, "sqlite": true, "redis": true, "mongo": true}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5020")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("STORE_KEY", "blog_posts")
	viper.SetDefault("SQLITE_PATH", "blogdraft.db")
	viper.SetDefault("MONGODB_DATABASE", "blogdraft")
	viper.SetDefault("MONGODB_COLLECTION", "kv")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PREFIX", "blogdraft:")
	viper.SetDefault("EXPORT_BACKEND", "dir")
	viper.SetDefault("EXPORT_DIR", "exports")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(viper.GetString("STORE_BACKEND")),
			Key:        viper.GetString("STORE_KEY"),
			SQLitePath: viper.GetString("SQLITE_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:        viper.GetString("MONGODB_URI"),
			Database:   viper.GetString("MONGODB_DATABASE"),
			Collection: viper.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Prefix:   viper.GetString("REDIS_PREFIX"),
		},
		Export: ExportConfig{
			Backend: strings.ToLower(viper.GetString("EXPORT_BACKEND")),
			Dir:     viper.GetString("EXPORT_DIR"),
			PDFFont: viper.GetString("EXPORT_PDF_FONT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if !storeBackends[cfg.Store.Backend] {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "mongo" && cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("STORE_BACKEND=mongo requires MONGODB_URI")
	}
	if cfg.Store.Backend == "redis" && cfg.Redis.Host == "" {
		return nil, fmt.Errorf("STORE_BACKEND=redis requires REDIS_HOST")
	}
	if cfg.Export.Backend != "dir" && cfg.Export.Backend != "minio" {
		return nil, fmt.Errorf("unknown EXPORT_BACKEND %q", cfg.Export.Backend)
	}
	return cfg, nil
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}
