package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Events    EventsConfig    `yaml:"events"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	// Timezone names the zone whose midnight ends a workout day. Empty
	// means the server's local zone.
	Timezone string `yaml:"timezone"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects where device state lives: an embedded SQLite file or
// a PostgreSQL database.
type StoreConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres DatabaseConfig `yaml:"postgres"`
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
}

// AIConfig points at an OpenAI-compatible chat completions API. An empty
// APIKey disables the AI endpoints.
type AIConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// EventsConfig enables publishing workout events to Kafka when Brokers is
// non-empty.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPRIGHT_ and underscore-separated paths:
//
//	REPRIGHT_SERVER_HOST, REPRIGHT_SERVER_PORT,
//	REPRIGHT_STORE_DRIVER, REPRIGHT_STORE_PATH,
//	REPRIGHT_DB_HOST, REPRIGHT_DB_PORT, REPRIGHT_DB_NAME,
//	REPRIGHT_DB_USER, REPRIGHT_DB_PASSWORD, REPRIGHT_DB_SSLMODE,
//	REPRIGHT_AUTH_API_KEY,
//	REPRIGHT_AI_BASE_URL, REPRIGHT_AI_API_KEY, REPRIGHT_AI_MODEL, REPRIGHT_AI_TIMEOUT,
//	REPRIGHT_EVENTS_BROKERS (comma-separated), REPRIGHT_EVENTS_TOPIC,
//	REPRIGHT_TAILSCALE_ENABLED, REPRIGHT_TAILSCALE_HOSTNAME, REPRIGHT_TAILSCALE_STATE_DIR,
//	REPRIGHT_TIMEZONE
//
// OPENAI_API_KEY is honored when REPRIGHT_AI_API_KEY is unset.
func Load(path string) (*Config, error) {
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
	if v := os.Getenv("REPRIGHT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPRIGHT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPRIGHT_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("REPRIGHT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("REPRIGHT_DB_HOST"); v != "" {
		cfg.Store.Postgres.Host = v
	}
	if v := os.Getenv("REPRIGHT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.Port = port
		}
	}
	if v := os.Getenv("REPRIGHT_DB_NAME"); v != "" {
		cfg.Store.Postgres.Name = v
	}
	if v := os.Getenv("REPRIGHT_DB_USER"); v != "" {
		cfg.Store.Postgres.User = v
	}
	if v := os.Getenv("REPRIGHT_DB_PASSWORD"); v != "" {
		cfg.Store.Postgres.Password = v
	}
	if v := os.Getenv("REPRIGHT_DB_SSLMODE"); v != "" {
		cfg.Store.Postgres.SSLMode = v
	}
	if v := os.Getenv("REPRIGHT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPRIGHT_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("REPRIGHT_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("REPRIGHT_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("REPRIGHT_AI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AI.Timeout = d
		}
	}
	if v := os.Getenv("REPRIGHT_EVENTS_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	if v := os.Getenv("REPRIGHT_EVENTS_TOPIC"); v != "" {
		cfg.Events.Topic = v
	}
	if v := os.Getenv("REPRIGHT_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("REPRIGHT_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("REPRIGHT_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("REPRIGHT_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverSQLite
	}
	if cfg.Store.Driver == DriverSQLite && cfg.Store.Path == "" {
		cfg.Store.Path = "repright.db"
	}
	if len(cfg.Events.Brokers) > 0 && cfg.Events.Topic == "" {
		cfg.Events.Topic = "repright.workouts"
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "repright"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		db := c.Store.Postgres
		if db.Host == "" {
			return fmt.Errorf("store.postgres.host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("store.postgres.port is required")
		}
		if db.Name == "" {
			return fmt.Errorf("store.postgres.name is required")
		}
		if db.User == "" {
			return fmt.Errorf("store.postgres.user is required")
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Store.Driver)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}
