package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Oracle   OracleConfig
	Mempool  MempoolConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// OracleConfig holds the oracle's signing and attestation settings
type OracleConfig struct {
	SecretKey       string
	Name            string
	DigitBase       int
	NbDigits        int
	WatcherInterval time.Duration
}

// MempoolConfig holds mempool.space API settings
type MempoolConfig struct {
	BaseURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "ernest_oracle"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Oracle: OracleConfig{
			SecretKey:       getEnv("ORACLE_KEY", ""),
			Name:            getEnv("ORACLE_NAME", "Ernest Parlay Oracle"),
			DigitBase:       getEnvInt("ORACLE_DIGIT_BASE", 2),
			NbDigits:        getEnvInt("ORACLE_NB_DIGITS", 20),
			WatcherInterval: time.Duration(getEnvInt("WATCHER_INTERVAL_SECONDS", 60)) * time.Second,
		},
		Mempool: MempoolConfig{
			BaseURL: getEnv("MEMPOOL_BASE_URL", "https://mempool.space/api/v1"),
		},
	}

	// Validate required fields
	if config.Oracle.SecretKey == "" {
		return nil, fmt.Errorf("ORACLE_KEY is required")
	}
	if config.Oracle.DigitBase < 2 {
		return nil, fmt.Errorf("ORACLE_DIGIT_BASE must be at least 2")
	}
	if config.Oracle.NbDigits < 1 {
		return nil, fmt.Errorf("ORACLE_NB_DIGITS must be at least 1")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with a fallback default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
