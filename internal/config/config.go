package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Parse     ParseConfig     `yaml:"parse"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
	// DevLogin is the client email used for every request when Tailscale
	// is disabled.
	DevLogin string `yaml:"dev_login"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// SheetsConfig selects where grids are fetched from. With a credentials
// file the Google Sheets API is used; otherwise sheet URLs are read as
// local workbook paths under WorkbookDir.
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	Range           string `yaml:"range"`
	WorkbookDir     string `yaml:"workbook_dir"`
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	Collection      string `yaml:"collection"`
	CredentialsFile string `yaml:"credentials_file"`
}

type RefreshConfig struct {
	// Schedule is a cron spec such as "@every 6h". Empty disables
	// scheduled refreshes.
	Schedule       string `yaml:"schedule"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

type ParseConfig struct {
	MealKeywords []string `yaml:"meal_keywords"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file next to the config file, if present, is loaded into the
// environment first without replacing variables that are already set.
// Env vars use the prefix PORTAL_ and underscore-separated paths:
//
//	PORTAL_SERVER_HOST, PORTAL_SERVER_PORT,
//	PORTAL_DB_HOST, PORTAL_DB_PORT, PORTAL_DB_NAME,
//	PORTAL_DB_USER, PORTAL_DB_PASSWORD, PORTAL_DB_SSLMODE,
//	PORTAL_AUTH_API_KEY, PORTAL_DEV_LOGIN,
//	PORTAL_TAILSCALE_ENABLED, PORTAL_TAILSCALE_HOSTNAME, PORTAL_TAILSCALE_STATE_DIR,
//	PORTAL_SHEETS_CREDENTIALS, PORTAL_FIRESTORE_PROJECT,
//	PORTAL_REFRESH_SCHEDULE, PORTAL_MEAL_KEYWORDS (comma separated)
func Load(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORTAL_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORTAL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PORTAL_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PORTAL_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PORTAL_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PORTAL_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PORTAL_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PORTAL_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("PORTAL_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("PORTAL_DEV_LOGIN"); v != "" {
		cfg.Auth.DevLogin = v
	}
	if v := os.Getenv("PORTAL_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("PORTAL_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("PORTAL_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("PORTAL_SHEETS_CREDENTIALS"); v != "" {
		cfg.Sheets.CredentialsFile = v
	}
	if v := os.Getenv("PORTAL_FIRESTORE_PROJECT"); v != "" {
		cfg.Firestore.ProjectID = v
	}
	if v := os.Getenv("PORTAL_REFRESH_SCHEDULE"); v != "" {
		cfg.Refresh.Schedule = v
	}
	if v := os.Getenv("PORTAL_MEAL_KEYWORDS"); v != "" {
		cfg.Parse.MealKeywords = strings.Split(v, ",")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "portal"
	}
	if cfg.Auth.DevLogin == "" {
		cfg.Auth.DevLogin = "local"
	}
	if cfg.Refresh.TimeoutMinutes == 0 {
		cfg.Refresh.TimeoutMinutes = 30
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Refresh.Schedule != "" {
		if _, err := cron.Parse(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("refresh.schedule: %w", err)
		}
	}
	return nil
}
