package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: environment variables are read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Simulation engine
	Engine EngineConfig

	// HTTP API
	API APIConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Directory holding <TICKER>.csv price files for offline runs
	PriceDataDir string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration // price series cache TTL
}

// EngineConfig holds backtest and Monte Carlo settings
type EngineConfig struct {
	RiskFreeRate    float64 // annual, e.g. 0.06
	Simulations     int     // Monte Carlo trials
	Horizon         int     // trading days
	CalendarHorizon bool    // use trading days to the same date next year instead of Horizon
	Strategy        string  // hold, target_sl, momentum
	Seed            int64   // 0 = time based
	Workers         int     // Monte Carlo worker goroutines
	BatchWorkers    int     // concurrent baskets for simulate-all
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	RateLimit float64 // requests per second
	RateBurst int
}

// SchedulerConfig holds cron settings
type SchedulerConfig struct {
	SimulateAllCron string // with seconds field
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function calling os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("PRICE_CACHE_TTL", "6h"),
		},

		Engine: EngineConfig{
			RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", 0.06),
			Simulations:     getEnvAsInt("MC_SIMULATIONS", 3000),
			Horizon:         getEnvAsInt("MC_HORIZON", 252),
			CalendarHorizon: getEnvAsBool("MC_CALENDAR_HORIZON", false),
			Strategy:        getEnv("MC_STRATEGY", "hold"),
			Seed:            int64(getEnvAsInt("MC_SEED", 0)),
			Workers:         getEnvAsInt("MC_WORKERS", runtime.NumCPU()),
			BatchWorkers:    getEnvAsInt("BATCH_WORKERS", 4),
		},

		API: APIConfig{
			RateLimit: getEnvAsFloat("API_RATE_LIMIT", 5),
			RateBurst: getEnvAsInt("API_RATE_BURST", 10),
		},

		Scheduler: SchedulerConfig{
			SimulateAllCron: getEnv("SIMULATE_ALL_CRON", "0 0 19 * * 1-5"),
		},

		PriceDataDir: getEnv("PRICE_DATA_DIR", "data/prices"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration ranges
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.RiskFreeRate < 0 || c.Engine.RiskFreeRate >= 1 {
		return fmt.Errorf("RISK_FREE_RATE must be in [0, 1), got %v", c.Engine.RiskFreeRate)
	}
	if c.Engine.Simulations <= 0 {
		return fmt.Errorf("MC_SIMULATIONS must be > 0")
	}
	if c.Engine.Horizon < 0 {
		return fmt.Errorf("MC_HORIZON must be >= 0")
	}
	switch c.Engine.Strategy {
	case "hold", "target_sl", "momentum":
	default:
		return fmt.Errorf("MC_STRATEGY must be one of: hold, target_sl, momentum")
	}
	if c.Engine.Workers <= 0 {
		c.Engine.Workers = 1
	}
	if c.Engine.BatchWorkers <= 0 {
		c.Engine.BatchWorkers = 1
	}

	if c.API.RateLimit <= 0 || c.API.RateBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_BURST must be > 0")
	}

	return nil
}

// RequireDatabase reports an error when DATABASE_URL is missing.
// Offline commands work without it; server commands call this.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
