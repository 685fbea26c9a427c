// internal/config/config.go
//
// Server configuration.
// Responsibilities:
//   - Built-in defaults (port, DB path, default 3x3 board, generation limits).
//   - Layered loading: .env, optional YAML file (CONFIG_FILE), environment variables.
//   - Validation of the default board against the generation limits.

package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"log_level"`
	DBPath        string `yaml:"db_path"`
	ClientOrigin  string `yaml:"client_origin"`
	Production    bool   `yaml:"production"` // secure cookies
	JWTSecret     string `yaml:"jwt_secret"`
	JWTExpireDays int    `yaml:"jwt_expires_days"`
	CookieName    string `yaml:"cookie_name"`
	DailySalt     string `yaml:"daily_salt"`

	// Default board, used by the daily challenge and requests that omit it.
	GridWidth     int `yaml:"grid_width"`
	GridHeight    int `yaml:"grid_height"`
	PatternLength int `yaml:"pattern_length"`

	// Generation limits.
	MaxNodes   int `yaml:"max_nodes"`
	MaxLength  int `yaml:"max_length"`
	GenWorkers int `yaml:"gen_workers"`

	MaxGuesses int `yaml:"max_guesses"` // 0 = unlimited
}

// Default returns the built-in settings (a 3x3 board, patterns of 6).
func Default() Config {
	return Config{
		Port:          "5175",
		LogLevel:      "info",
		DBPath:        "./data/app.db",
		ClientOrigin:  "http://localhost:5173",
		JWTExpireDays: 14,
		CookieName:    "patternmind_token",
		DailySalt:     "local_dev_salt",
		GridWidth:     3,
		GridHeight:    3,
		PatternLength: 6,
		MaxNodes:      9,
		MaxLength:     9,
		GenWorkers:    runtime.NumCPU(),
	}
}

// Load builds the configuration in layers: defaults, .env (if present),
// the YAML file named by CONFIG_FILE (if set), then environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PORT":          &c.Port,
		"LOG_LEVEL":     &c.LogLevel,
		"DB_PATH":       &c.DBPath,
		"CLIENT_ORIGIN": &c.ClientOrigin,
		"JWT_SECRET":    &c.JWTSecret,
		"COOKIE_NAME":   &c.CookieName,
		"DAILY_SALT":    &c.DailySalt,
	}
	for k, p := range str {
		if v := os.Getenv(k); v != "" {
			*p = v
		}
	}
	num := map[string]*int{
		"JWT_EXPIRES_DAYS": &c.JWTExpireDays,
		"GRID_WIDTH":       &c.GridWidth,
		"GRID_HEIGHT":      &c.GridHeight,
		"PATTERN_LENGTH":   &c.PatternLength,
		"MAX_NODES":        &c.MaxNodes,
		"MAX_LENGTH":       &c.MaxLength,
		"GEN_WORKERS":      &c.GenWorkers,
		"MAX_GUESSES":      &c.MaxGuesses,
	}
	for k, p := range num {
		v := os.Getenv(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*p = n
	}
	if os.Getenv("NODE_ENV") == "production" || os.Getenv("APP_ENV") == "production" {
		c.Production = true
	}
	return nil
}

// Finalize validates the board and limits.
func (c *Config) Finalize() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 || c.PatternLength <= 0 {
		return fmt.Errorf("config: board %dx%d length %d must be positive", c.GridWidth, c.GridHeight, c.PatternLength)
	}
	nodes := c.GridWidth * c.GridHeight
	if c.PatternLength > nodes {
		return fmt.Errorf("config: pattern length %d exceeds %d nodes", c.PatternLength, nodes)
	}
	if c.MaxNodes < nodes || c.MaxLength < c.PatternLength {
		return fmt.Errorf("config: default board %dx%d length %d exceeds limits (max_nodes=%d, max_length=%d)",
			c.GridWidth, c.GridHeight, c.PatternLength, c.MaxNodes, c.MaxLength)
	}
	if c.GenWorkers <= 0 {
		c.GenWorkers = runtime.NumCPU()
	}
	if c.MaxGuesses < 0 {
		c.MaxGuesses = 0
	}
	if c.JWTExpireDays <= 0 {
		c.JWTExpireDays = 14
	}
	return nil
}
