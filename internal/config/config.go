// Package config provides application configuration management with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Google   GoogleConfig
	UI       UIConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	BaseURL      string        // Public base URL, used for the OAuth redirect URI
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DatabaseConfig holds SQLite storage configuration.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// HMAC secret for signing access tokens.
	JWTSecret string
	// Access token lifetime (default: 720h, 30 days).
	AccessTokenDuration time.Duration
}

// GoogleConfig holds Google OAuth client configuration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

// UIConfig holds frontend integration configuration.
type UIConfig struct {
	// Origin is the UI origin allowed by CORS and used as the default
	// post-login redirect target.
	Origin string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	port := flag.String("port", "", "Server port (default: 8080)")
	baseURL := flag.String("base-url", "", "Public base URL for OAuth callbacks")
	dbPath := flag.String("db-path", "", "Path to the SQLite database file")
	jwtSecret := flag.String("jwt-secret", "", "HMAC secret for access tokens")
	tokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 720h)")
	uiOrigin := flag.String("ui-origin", "", "Frontend origin for CORS and login redirects")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:    getConfigValue(*port, "SERVER_PORT", "8080"),
			BaseURL: getConfigValue(*baseURL, "BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DATABASE_PATH", "zonein.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getConfigValue(*jwtSecret, "JWT_SECRET", "change-me-in-production"),
		},
		Google: GoogleConfig{
			ClientID:     getConfigValue("", "GOOGLE_CLIENT_ID", ""),
			ClientSecret: getConfigValue("", "GOOGLE_CLIENT_SECRET", ""),
		},
		UI: UIConfig{
			Origin: getConfigValue(*uiOrigin, "UI_ORIGIN", "http://localhost:5000"),
		},
	}

	// Parse durations.
	accessDurationStr := getConfigValue(*tokenDuration, "ACCESS_TOKEN_DURATION", "720h")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	for _, d := range []struct {
		dst    *time.Duration
		envKey string
		def    string
	}{
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
	} {
		s := getConfigValue("", d.envKey, d.def)
		v, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, s, err)
		}
		*d.dst = v
	}

	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	if c.App.Environment == "production" && c.Auth.JWTSecret == "change-me-in-production" {
		return errors.New("JWT_SECRET must be set in production")
	}

	return nil
}

// expandDatabasePath expands ~ and makes the path absolute.
func (c *Config) expandDatabasePath() error {
	path := c.Database.Path

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Database.Path = filepath.Clean(path)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real environment variables take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
