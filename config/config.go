package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Economy configuration
	DailiesAmount      int64
	HourliesAmount     int64
	VoteReward         int64
	SellDepreciation   float64 // fraction of purchase price refunded on sale
	PriceCut           float64 // discount multiplier for random rolls
	RollInterval       time.Duration
	FreeMoneySpawnRate int // 1-in-N chance of a coin drop per message

	// Donator tiers
	DonatorTier1 int16
	DonatorTier2 int16
	DevTier      int16

	// Exchange partner (Discoin). Empty token disables the feature.
	DiscoinToken    string
	DiscoinCurrency string

	// Vote rewards (top.gg). Empty token disables the feature.
	DBLToken string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex
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
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Local development reads a .env file; absence is fine.
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Economy settings with defaults
		DailiesAmount:      300,
		HourliesAmount:     150,
		VoteReward:         500,
		SellDepreciation:   0.6,
		PriceCut:           0.08,
		RollInterval:       3 * time.Hour,
		FreeMoneySpawnRate: 85,

		DonatorTier1: 1,
		DonatorTier2: 2,
		DevTier:      5,

		DiscoinToken:    os.Getenv("DISCOIN_TOKEN"),
		DiscoinCurrency: getEnvDefault("DISCOIN_SELF_CURRENCY", "PIC"),
		DBLToken:        os.Getenv("DBL_TOKEN"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if amount := os.Getenv("DAILIES_AMOUNT"); amount != "" {
		if parsed, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.DailiesAmount = parsed
		}
	}
	if amount := os.Getenv("HOURLIES_AMOUNT"); amount != "" {
		if parsed, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.HourliesAmount = parsed
		}
	}
	if amount := os.Getenv("VOTE_REWARD"); amount != "" {
		if parsed, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.VoteReward = parsed
		}
	}
	if rate := os.Getenv("SELL_WAIFU_DEPRECIATION"); rate != "" {
		if parsed, err := strconv.ParseFloat(rate, 64); err == nil {
			config.SellDepreciation = parsed
		}
	}
	if cut := os.Getenv("PRICE_CUT"); cut != "" {
		if parsed, err := strconv.ParseFloat(cut, 64); err == nil {
			config.PriceCut = parsed
		}
	}
	if interval := os.Getenv("ROLL_INTERVAL"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.RollInterval = time.Duration(parsed) * time.Second
		}
	}
	if rate := os.Getenv("FREE_MONEY_SPAWN_LIMIT"); rate != "" {
		if parsed, err := strconv.Atoi(rate); err == nil {
			config.FreeMoneySpawnRate = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
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
		Environment:        "test",
		DiscordToken:       "test-token",
		DailiesAmount:      300,
		HourliesAmount:     150,
		VoteReward:         500,
		SellDepreciation:   0.6,
		PriceCut:           0.08,
		RollInterval:       3 * time.Hour,
		FreeMoneySpawnRate: 85,
		DonatorTier1:       1,
		DonatorTier2:       2,
		DevTier:            5,
		DiscoinCurrency:    "PIC",
	}
}
