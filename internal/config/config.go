package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers understood by the backend package.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration sourced from an optional YAML file and env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	DatabaseName  string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	CORSOrigins   []string
	LogLevel      string
	LogFormat     string
	LogDir        string
}

// fileConfig mirrors Config for the YAML file named by CONFIG_FILE.
// Secrets are expected to come from the environment.
type fileConfig struct {
	Port          string `yaml:"port"`
	StorageDriver string `yaml:"storage_driver"`
	DatabaseURL   string `yaml:"database_url"`
	DatabaseName  string `yaml:"database_name"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	JWTTTLMinutes int    `yaml:"jwt_ttl_minutes"`
	CORSOrigins   string `yaml:"cors_allowed_origins"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogDir        string `yaml:"log_dir"`
}

// Load reads configuration and performs minimal validation. Environment
// variables take precedence over values from CONFIG_FILE.
func Load() (Config, error) {
	file, err := readFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), file.Port, "8080"),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), file.StorageDriver, DriverMongo)),
		DatabaseURL:   fallback(os.Getenv("DATABASE_URL"), file.DatabaseURL),
		DatabaseName:  fallback(os.Getenv("DATABASE_NAME"), file.DatabaseName, "tasks"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), file.JWTIssuer, "tasks-backend"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), file.CORSOrigins, "*")),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), file.LogLevel, "info"),
		LogFormat:     fallback(os.Getenv("LOG_FORMAT"), file.LogFormat, "text"),
		LogDir:        fallback(os.Getenv("LOG_DIR"), file.LogDir, "logs"),
	}

	minutes := strings.TrimSpace(os.Getenv("JWT_TTL_MINUTES"))
	if minutes == "" && file.JWTTTLMinutes > 0 {
		minutes = strconv.Itoa(file.JWTTTLMinutes)
	}
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	switch cfg.StorageDriver {
	case DriverMongo, DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverSQLite:
		cfg.DatabaseURL = fallback(cfg.DatabaseURL, "file:tasks.db")
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

// fallback returns the first non-blank value, trimmed.
func fallback(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
