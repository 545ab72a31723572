package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"stakehouse/database"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	ListenAddr string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// External token ledger configuration
	TokenAPIURL    string
	CustodyAddress string // address the service holds escrowed tokens under

	// Platform bootstrap configuration
	OwnerAddress      string
	FeeWallet         string
	DefaultFeeRateBps int32
	DefaultMaxBonus   int64
	BonusAccount      string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables forwarding
	NATSSubject string // subject prefix for forwarded events

	// Environment
	Environment string // "development" or "production"
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

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// HTTP
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Token ledger
		TokenAPIURL:    os.Getenv("TOKEN_API_URL"),
		CustodyAddress: os.Getenv("CUSTODY_ADDRESS"),

		// Platform bootstrap
		OwnerAddress:      os.Getenv("OWNER_ADDRESS"),
		FeeWallet:         os.Getenv("FEE_WALLET"),
		DefaultFeeRateBps: 500,
		DefaultMaxBonus:   0,
		BonusAccount:      os.Getenv("BONUS_ACCOUNT"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),
		NATSSubject: getEnvWithDefault("NATS_SUBJECT", "stakehouse.events"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if bps := os.Getenv("DEFAULT_FEE_RATE_BPS"); bps != "" {
		if parsed, err := strconv.ParseInt(bps, 10, 32); err == nil {
			config.DefaultFeeRateBps = int32(parsed)
		}
	}
	if maxBonus := os.Getenv("DEFAULT_MAX_BONUS"); maxBonus != "" {
		if parsed, err := strconv.ParseInt(maxBonus, 10, 64); err == nil {
			config.DefaultMaxBonus = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.TokenAPIURL == "" {
			return nil, fmt.Errorf("TOKEN_API_URL is required")
		}
		if config.CustodyAddress == "" {
			return nil, fmt.Errorf("CUSTODY_ADDRESS is required")
		}
		if config.OwnerAddress == "" {
			return nil, fmt.Errorf("OWNER_ADDRESS is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
		Environment:       "test",
		ListenAddr:        ":0",
		CustodyAddress:    "addr_test_custody",
		OwnerAddress:      "addr_test_owner",
		DefaultFeeRateBps: 500,
	}
}
