package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"casinobot/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Ledger backends
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	// Ledger storage
	LedgerBackend string `env:"LEDGER_BACKEND" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DatabaseName  string `env:"DATABASE_NAME"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Event streaming (optional)
	NATSURL string `env:"NATS_URL"`

	// Metrics and health endpoint
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// Casino settings
	StartingBalance int64         `env:"STARTING_BALANCE" envDefault:"1000"`
	DailyReward     int64         `env:"DAILY_REWARD" envDefault:"300"`
	DailyCooldown   time.Duration `env:"DAILY_COOLDOWN" envDefault:"24h"`

	// Chat responder
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AllowedChannelID string        `env:"ALLOWED_CHANNEL_ID"`
	RoastMode        string        `env:"ROAST_MODE" envDefault:"mild"`
	ChatWorkers      int           `env:"CHAT_WORKERS" envDefault:"4"`
	ChatQueueSize    int           `env:"CHAT_QUEUE_SIZE" envDefault:"64"`
	ChatTimeout      time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// ChatEnabled reports whether the chat responder has everything it needs
func (c *Config) ChatEnabled() bool {
	return c.OpenAIAPIKey != "" && c.AllowedChannelID != ""
}

// DailyCooldownSeconds returns the daily cooldown in whole seconds
func (c *Config) DailyCooldownSeconds() int64 {
	return int64(c.DailyCooldown / time.Second)
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	c.LedgerBackend = strings.ToLower(strings.TrimSpace(c.LedgerBackend))
	switch c.LedgerBackend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}
	if c.DailyReward <= 0 {
		return fmt.Errorf("DAILY_REWARD must be positive")
	}
	if c.DailyCooldown < time.Second {
		return fmt.Errorf("DAILY_COOLDOWN must be at least one second")
	}

	if c.AllowedChannelID != "" {
		if _, err := strconv.ParseUint(c.AllowedChannelID, 10, 64); err != nil {
			return fmt.Errorf("ALLOWED_CHANNEL_ID must be numeric")
		}
	}
	if c.ChatWorkers < 1 {
		c.ChatWorkers = 1
	}
	if c.ChatQueueSize < 1 {
		c.ChatQueueSize = 1
	}

	c.RoastMode = strings.ToLower(c.RoastMode)

	if c.Environment != "test" {
		// Validate required configuration
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.LedgerBackend == BackendPostgres && c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return nil
}

// IsProduction reports whether the bot runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// MigrationDatabaseURL builds the migration URL without requiring the full
// bot configuration (no DISCORD_TOKEN needed)
func MigrationDatabaseURL() string {
	return database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), getEnvWithDefault("DATABASE_NAME", ""))
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:     "test",
		LedgerBackend:   BackendMemory,
		StartingBalance: 1000,
		DailyReward:     300,
		DailyCooldown:   24 * time.Hour,
		RoastMode:       "mild",
		ChatWorkers:     1,
		ChatQueueSize:   8,
		ChatTimeout:     time.Second,
		LogLevel:        "info",
	}
}
