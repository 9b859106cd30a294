// Package config provides configuration for the pdfchat client and mock backend.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/xiaot623/pdfchat/internal/logging"
)

// Config holds the client configuration.
type Config struct {
	// Endpoints
	WSAddress string // Streaming endpoint, e.g. ws://localhost:8000
	APIURL    string // REST base, e.g. http://localhost:8000/api/v1

	// Local state
	DatabasePath string

	// Timeouts
	HandshakeTimeout time.Duration
	HTTPTimeout      time.Duration

	// Query policy
	MaxQueryLength  int
	QueryPolicyFile string // rego file replacing the built-in policy

	// Mock backend settings
	MockPort      int
	MockTokenRate int    // tokens per second, 0 disables pacing
	MockScript    string // YAML reply script, empty uses the built-in one

	// Logging
	LogLevel string
}

// Load loads configuration from an optional .env file and environment variables.
// Variables already present in the environment win over the file.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				logging.Warnf("Ignoring %s: %v", f, err)
			}
		}
	}

	return &Config{
		WSAddress:        getEnv("WS_ADDRESS", "ws://localhost:8000"),
		APIURL:           getEnv("API_URL", "http://localhost:8000/api/v1"),
		DatabasePath:     getEnv("PDFCHAT_DB", defaultDatabasePath()),
		HandshakeTimeout: time.Duration(getEnvInt("WS_HANDSHAKE_TIMEOUT_MS", 10000)) * time.Millisecond,
		HTTPTimeout:      time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxQueryLength:   getEnvInt("MAX_QUERY_LENGTH", 4000),
		QueryPolicyFile:  getEnv("QUERY_POLICY_FILE", ""),
		MockPort:         getEnvInt("MOCK_PORT", 8000),
		MockTokenRate:    getEnvInt("MOCK_TOKEN_RATE", 20),
		MockScript:       getEnv("MOCK_SCRIPT", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pdfchat.db"
	}
	return filepath.Join(home, ".pdfchat", "state.db")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
