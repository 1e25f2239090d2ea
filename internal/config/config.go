package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	defaultPort         = 8000
	defaultMigrationDir = "file://db/migration"
)

type Config struct {
	Stage          string
	Port           int
	DatabaseURL    string
	MigrationDir   string
	LogLevel       string
	AllowedOrigins []string
}

// AnalyticsEnabled reports whether a database was configured.
func (c Config) AnalyticsEnabled() bool {
	return c.DatabaseURL != ""
}

func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads envFile into the environment unless STAGE is
// prod, then builds the config from the environment. A missing
// env file is fine; the variables may already be exported.
func LoadFrom(envFile string) (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Stage:        os.Getenv("STAGE"),
		Port:         defaultPort,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		MigrationDir: defaultMigrationDir,
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, fmt.Errorf("stage must be either dev or prod, got %q", cfg.Stage)
	}

	if portEnv := os.Getenv("PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", portEnv, err)
		}
		if port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("PORT out of range: %d", port)
		}
		cfg.Port = port
	}

	if dir := os.Getenv("MIGRATION_DIR"); dir != "" {
		cfg.MigrationDir = dir
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}
