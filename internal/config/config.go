package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultAPIURL  = "http://localhost:5001"
	DefaultSession = "default"
)

type Config struct {
	APIURL         string        `yaml:"api_url"`
	Environment    string        `yaml:"environment"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      RateLimit     `yaml:"rate_limit"`
	Log            Log           `yaml:"log"`
	Session        string        `yaml:"session"`
	LocationsFile  string        `yaml:"locations_file"`
	TUI            TUI           `yaml:"tui"`
}

// RateLimit bounds outgoing backend requests. Generation endpoints are slow and expensive,
// so accidental key repeat in the TUI should not fan out into many requests.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type TUI struct {
	// Theme is light, dark or auto.
	Theme string `yaml:"theme"`
}

func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		Environment:    EnvDevelopment,
		RequestTimeout: 5 * time.Minute,
		RateLimit:      RateLimit{PerSecond: 4, Burst: 4},
		Log:            Log{Level: "info", Format: "json"},
		Session:        DefaultSession,
		TUI:            TUI{Theme: "auto"},
	}
}

// Dir is ~/.projectforge unless PROJECTFORGE_CONFIG_DIR is set (tests use the override).
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".projectforge"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path (or the default path when empty), then a .env file in the
// working directory, then PROJECTFORGE_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_ENV")); v != "" {
		c.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_SESSION")); v != "" {
		c.Session = v
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_TUI_THEME")); v != "" {
		c.TUI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: PROJECTFORGE_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("PROJECTFORGE_RATE_LIMIT")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: PROJECTFORGE_RATE_LIMIT: %w", err)
		}
		c.RateLimit.PerSecond = f
	}
	return nil
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if strings.TrimSpace(c.Session) == "" {
		c.Session = DefaultSession
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("config: api_url must be http(s): %q", c.APIURL)
	}
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request_timeout must not be negative")
	}
	return nil
}

// Production reports whether diagnostic detail should be hidden from users.
func (c *Config) Production() bool { return c.Environment == EnvProduction }

// LogFile returns the configured log file, defaulting to <config dir>/logs/projectforge.log.
func (c *Config) LogFile() (string, error) {
	if v := strings.TrimSpace(c.Log.File); v != "" {
		return v, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "projectforge.log"), nil
}
