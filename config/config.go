package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBDriver   string // postgres, mysql or sqlite
	DBDSN      string // overrides the host/user/... fields when set
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey           string
	JWTExpireMinutes int
	SaltRound        int

	LogLevel  string
	LogFormat string // json or console

	CORSOrigins string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBDSN:      getEnv("DB_DSN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "trxflow"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:           getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 30),
		SaltRound:        getEnvInt("SALT_ROUND", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}

	return AppConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
