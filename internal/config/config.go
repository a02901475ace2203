package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseType string

const (
	SQLite   DatabaseType = "sqlite"
	Postgres DatabaseType = "postgres"
)

const defaultHashIterations = 600000

type Config struct {
	Port         string
	DatabaseType DatabaseType
	DatabaseName string
	// SQLite config
	SQLitePath string
	// PostgreSQL config
	PostgresDSN string
	// Session cookie signing
	SessionSecret string
	SessionMaxAge int
	// Admin panel credentials
	AdminUsername string
	AdminPassword string
	// API tokens
	JwtKey []byte
	JwtTTL time.Duration
	// Recognition
	ModelPath string
	// Gallery
	StaticDir           string
	VisualizationImages []string
	HashIterations      int
	LogLevel            string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME or ADMIN_PASSWORD is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is not set")
	}

	maxAge, err := getEnvInt("SESSION_MAX_AGE", 86400)
	if err != nil {
		return nil, err
	}
	iterations, err := getEnvInt("PASSWORD_HASH_ITERATIONS", defaultHashIterations)
	if err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("PASSWORD_HASH_ITERATIONS must be positive")
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	databaseName := getEnv("DATABASE_NAME", "users")

	config := &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseType:        DatabaseType(getEnv("DATABASE_TYPE", string(SQLite))),
		DatabaseName:        databaseName,
		SessionSecret:       sessionSecret,
		SessionMaxAge:       maxAge,
		AdminUsername:       adminUsername,
		AdminPassword:       adminPassword,
		JwtKey:              []byte(jwtSecret),
		JwtTTL:              jwtTTL,
		ModelPath:           getEnv("MODEL_PATH", filepath.Join("model", "digit_recognizer.json")),
		StaticDir:           getEnv("STATIC_DIR", "static"),
		VisualizationImages: splitList(getEnv("VISUALIZATION_IMAGES", "static/images/image1.png,static/images/image2.png")),
		HashIterations:      iterations,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	switch config.DatabaseType {
	case SQLite:
		sqlitePath := os.Getenv("SQLITE_PATH")
		if sqlitePath == "" {
			sqlitePath = filepath.Join("data", fmt.Sprintf("%s.db", databaseName))
		}
		config.SQLitePath = sqlitePath
	case Postgres:
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is not set")
		}
		config.PostgresDSN = dsn
	default:
		return nil, fmt.Errorf("unsupported DATABASE_TYPE: %s", config.DatabaseType)
	}

	return config, nil
}

// String masks secrets.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, Model: %s, Secrets: ***}", c.Port, c.DatabaseType, c.ModelPath)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
