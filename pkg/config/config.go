// Package config provides configuration for the CareLink client SDK and
// CLI, loaded from environment variables with .env support for local
// development and validation on startup. Everything has a sensible default;
// a bare environment yields a client pointed at a local backend with full
// request logging.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	client, err := session.New(session.Options{
//	    BaseURL: cfg.API.BaseURL,
//	    Timeout: cfg.API.Timeout,
//	})
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all configuration sections.
type Config struct {
	API     APIConfig
	Logging LoggingConfig
	Storage StorageConfig
}

// APIConfig holds the backend endpoint settings.
type APIConfig struct {
	BaseURL string        // API origin including the /api prefix
	Timeout time.Duration // Per-request timeout (default: 10s)
}

// LoggingConfig holds the request-logging switches. These map one-to-one
// onto apilog.Config; they live here so every switch is controllable from
// the environment.
type LoggingConfig struct {
	Enabled         bool // Master switch
	RequestEnabled  bool
	ResponseEnabled bool
	ErrorEnabled    bool
	IncludeHeaders  bool
	IncludeBody     bool
	MaxBodyLength   int // Serialized body cap in characters
}

// StorageConfig selects where the session is persisted. When RedisAddr is
// empty the session lives in a JSON file under StateDir; otherwise it is
// kept in redis under KeyPrefix.
type StorageConfig struct {
	StateDir      string // Directory for the file-backed session store
	RedisAddr     string // host:port; empty selects file storage
	RedisPassword string
	RedisDB       int
	KeyPrefix     string // Redis key namespace for this session partition
}

// Load reads configuration from environment variables, consulting a .env
// file when present. All variables are optional:
//
//	CARELINK_API_URL          API base URL (default: http://localhost:8080/api)
//	CARELINK_TIMEOUT          request timeout, Go duration (default: 10s)
//	CARELINK_STATE_DIR        session state directory (default: ~/.carelink)
//	CARELINK_REDIS_ADDR       redis address; empty means file storage
//	CARELINK_REDIS_PASSWORD   redis password
//	CARELINK_REDIS_DB         redis database number (default: 0)
//	CARELINK_STORAGE_PREFIX   redis key prefix (default: carelink:session:)
//	API_LOGGING_ENABLED       master logging switch (default: true)
//	API_LOGGING_REQUEST       request records (default: true)
//	API_LOGGING_RESPONSE      response records (default: true)
//	API_LOGGING_ERROR         error records (default: true)
//	API_LOGGING_HEADERS       include masked headers (default: true)
//	API_LOGGING_BODY          include masked bodies (default: true)
//	API_LOGGING_MAX_BODY      body cap in characters (default: 5000)
//
// Returns an error when validation fails.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	config := &Config{
		API: APIConfig{
			BaseURL: getEnv("CARELINK_API_URL", "http://localhost:8080/api"),
			Timeout: getEnvAsDuration("CARELINK_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Enabled:         getEnvAsBool("API_LOGGING_ENABLED", true),
			RequestEnabled:  getEnvAsBool("API_LOGGING_REQUEST", true),
			ResponseEnabled: getEnvAsBool("API_LOGGING_RESPONSE", true),
			ErrorEnabled:    getEnvAsBool("API_LOGGING_ERROR", true),
			IncludeHeaders:  getEnvAsBool("API_LOGGING_HEADERS", true),
			IncludeBody:     getEnvAsBool("API_LOGGING_BODY", true),
			MaxBodyLength:   getEnvAsInt("API_LOGGING_MAX_BODY", 5000),
		},
		Storage: StorageConfig{
			StateDir:      getEnv("CARELINK_STATE_DIR", defaultStateDir()),
			RedisAddr:     getEnv("CARELINK_REDIS_ADDR", ""),
			RedisPassword: getEnv("CARELINK_REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("CARELINK_REDIS_DB", 0),
			KeyPrefix:     getEnv("CARELINK_STORAGE_PREFIX", "carelink:session:"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is usable: a parseable API URL, a
// positive timeout, a non-negative body cap, and a state directory when
// file storage is selected.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.Logging.MaxBodyLength < 0 {
		return fmt.Errorf("max body length must not be negative")
	}

	if c.Storage.RedisAddr == "" && c.Storage.StateDir == "" {
		return fmt.Errorf("state directory is required for file storage")
	}

	return nil
}

// StateFile returns the path of the file-backed session store.
func (c *StorageConfig) StateFile() string {
	return filepath.Join(c.StateDir, "session.json")
}

// defaultStateDir places the session file under the user's home directory,
// falling back to a relative directory when home cannot be resolved.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".carelink"
	}
	return filepath.Join(home, ".carelink")
}

// Helper functions for environment variable parsing

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer with a default
// fallback. Unset or unparseable values yield the default.
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

// getEnvAsBool retrieves an environment variable as a boolean with a default
// fallback. Accepts the strconv.ParseBool forms (true/false/1/0).
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

// getEnvAsDuration retrieves an environment variable as a time.Duration with
// a default fallback. Supports Go duration format: "300ms", "1.5h", "2h45m".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
