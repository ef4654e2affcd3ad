package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	PostgresDSN   string
	MigrationsDir string
	MaxIdleConns  int
	MaxOpenConns  int
}

// Load reads configuration from the environment, with .env as a local
// development convenience.
func Load() *Config {
	_ = godotenv.Load()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			getEnv("POSTGRES_HOST", "localhost"),
			getEnv("POSTGRES_PORT", "5432"),
			getEnv("POSTGRES_USER", "postgres"),
			getEnv("POSTGRES_PASSWORD", "postgres"),
			getEnv("POSTGRES_DB", "kotoba"),
		)
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		PostgresDSN:   dsn,
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		MaxIdleConns:  10,
		MaxOpenConns:  20,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
