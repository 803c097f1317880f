package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradereflex/internal/logging"
	"github.com/rustyeddy/tradereflex/market"
)

// Config represents the complete server configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      logging.Config `json:"log" yaml:"log"`
	Session  SessionConfig  `json:"session" yaml:"session"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Refresh  RefreshConfig  `json:"refresh" yaml:"refresh"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

type ServerConfig struct {
	Host            string `json:"host" yaml:"host"`
	Port            int    `json:"port" yaml:"port"`
	ReadTimeout     string `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr is host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionConfig controls replay sessions and the tradable symbols
type SessionConfig struct {
	InitialBalance float64  `json:"initial_balance" yaml:"initial_balance"`
	Symbols        []string `json:"symbols" yaml:"symbols"`
}

// ProviderConfig selects the market data source
type ProviderConfig struct {
	Type    string `json:"type" yaml:"type"` // "yahoo" or "synthetic"
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout string `json:"timeout" yaml:"timeout"`
	Period  string `json:"period" yaml:"period"`
	Proxy   string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Seed    uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

type CacheConfig struct {
	Type  string      `json:"type" yaml:"type"` // "none", "memory" or "redis"
	TTL   string      `json:"ttl" yaml:"ttl"`
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
}

// RefreshConfig schedules updates of the prices orders fill at
type RefreshConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Schedule  string `json:"schedule" yaml:"schedule"`
	Timeframe string `json:"timeframe" yaml:"timeframe"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type         string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile   string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	AccountsFile string `json:"accounts_file,omitempty" yaml:"accounts_file,omitempty"`
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Duration parses s, returning def when s is empty.
func Duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// Load reads path, applies environment overrides and validates. An empty
// path starts from Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = parseFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, or JSON as fallback)
func LoadFromFile(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Missing sections keep their defaults
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("TRADEREFLEX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRADEREFLEX_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("TRADEREFLEX_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("HTTPS_PROXY"); v != "" && c.Provider.Proxy == "" {
		c.Provider.Proxy = v
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	for name, d := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"provider.timeout":        c.Provider.Timeout,
		"cache.ttl":               c.Cache.TTL,
	} {
		if _, err := Duration(d, 0); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Session.InitialBalance <= 0 {
		return fmt.Errorf("session.initial_balance must be positive")
	}
	if len(c.Session.Symbols) == 0 {
		return fmt.Errorf("session.symbols must not be empty")
	}

	switch c.Provider.Type {
	case "yahoo", "synthetic":
	default:
		return fmt.Errorf("provider.type must be 'yahoo' or 'synthetic'")
	}
	if c.Provider.Period == "" {
		return fmt.Errorf("provider.period is required")
	}

	switch c.Cache.Type {
	case "", "none", "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr required for redis cache")
		}
	default:
		return fmt.Errorf("cache.type must be 'none', 'memory' or 'redis'")
	}

	if c.Refresh.Enabled && c.Refresh.Schedule == "" {
		return fmt.Errorf("refresh.schedule required when refresh is enabled")
	}
	if _, err := market.ParseTimeframe(c.Refresh.Timeframe); err != nil {
		return fmt.Errorf("refresh.timeframe: %w", err)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.AccountsFile == "" {
			return fmt.Errorf("journal trades_file and accounts_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Log: logging.Config{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Session: SessionConfig{
			InitialBalance: 10000,
			Symbols:        append([]string(nil), market.DefaultSymbols...),
		},
		Provider: ProviderConfig{
			Type:    "synthetic",
			Timeout: "30s",
			Period:  "7d",
			Seed:    1,
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  "5m",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Refresh: RefreshConfig{
			Enabled:   true,
			Schedule:  "@every 5m",
			Timeframe: string(market.TF1Day),
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
