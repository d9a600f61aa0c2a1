package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/normanking/wikidex/internal/bus"
	"github.com/normanking/wikidex/internal/wiki"
)

// Config holds all application configuration for wikidex. It is loaded from
// ~/.wikidex/config.yaml and can be overridden by environment variables.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Wikipedia WikipediaConfig `mapstructure:"wikipedia" yaml:"wikipedia"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	TUI       TUIConfig       `mapstructure:"tui" yaml:"tui"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig selects and configures the document storage backend.
type StorageConfig struct {
	// Backend is the active backend: "mongo", "sqlite", or "memory"
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Mongo configures the MongoDB backend
	Mongo MongoConfig `mapstructure:"mongo" yaml:"mongo"`
	// SQLite configures the embedded SQLite backend
	SQLite SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

// MongoConfig contains connection settings for the MongoDB backend.
type MongoConfig struct {
	// URI is the MongoDB connection string
	URI string `mapstructure:"uri" yaml:"uri"`
	// Database is the database name
	Database string `mapstructure:"database" yaml:"database"`
	// Collection is the collection holding Wikipedia documents
	Collection string `mapstructure:"collection" yaml:"collection"`
	// TimeoutSec bounds connection and operation time (default: 10s)
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SQLiteConfig contains settings for the embedded SQLite backend.
type SQLiteConfig struct {
	// Path is the database file location
	Path string `mapstructure:"path" yaml:"path"`
}

// WikipediaConfig contains settings for the Wikipedia article fetcher.
type WikipediaConfig struct {
	// Language is the Wikipedia language edition (e.g., "en", "de")
	Language string `mapstructure:"language" yaml:"language"`
	// BaseURL overrides the language-derived api.php endpoint when set.
	// Useful for mirrors and API-compatible wikis.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	// UserAgent identifies wikidex to the Wikipedia API
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// CacheTTL is how long fetched articles stay in the in-memory cache (e.g., "15m")
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	// TimeoutSec bounds a single API request (default: 30s)
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ServerConfig contains settings for the serve command.
type ServerConfig struct {
	// ListenAddr is the HTTP listen address for the A2A and REST surface
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// ObserverPort is the port for the WebSocket event observer
	ObserverPort int `mapstructure:"observer_port" yaml:"observer_port"`
	// TokenHash is the bcrypt hash of the bearer token protecting the REST
	// surface. Written by `wikidex serve --generate-token`; empty disables auth
	TokenHash string `mapstructure:"token_hash" yaml:"token_hash,omitempty"`
	// EventBuffer is how many past events new WebSocket clients receive as
	// replay; 0 disables replay
	EventBuffer int `mapstructure:"event_buffer" yaml:"event_buffer"`
}

// TUIConfig contains configuration for the terminal user interface.
type TUIConfig struct {
	// Theme is the UI theme ("dark" or "light")
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file
	File string `mapstructure:"file" yaml:"file"`
	// Pretty enables human-readable console output instead of JSON
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	wikidexDir := filepath.Join(homeDir, ".wikidex")

	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "wikidex",
				Collection: "wikipedia",
				TimeoutSec: 10,
			},
			SQLite: SQLiteConfig{
				Path: filepath.Join(wikidexDir, "wikidex.db"),
			},
		},
		Wikipedia: WikipediaConfig{
			Language:   "en",
			UserAgent:  wiki.DefaultUserAgent,
			CacheTTL:   15 * time.Minute,
			TimeoutSec: 30,
		},
		Server: ServerConfig{
			ListenAddr:   ":8080",
			ObserverPort: bus.DefaultObserverPort,
			EventBuffer:  100,
		},
		TUI: TUIConfig{
			Theme: "dark",
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   filepath.Join(wikidexDir, "logs", "wikidex.log"),
			Pretty: true,
		},
	}
}

// ClientOptions returns the wiki client options this configuration implies.
func (c WikipediaConfig) ClientOptions() []wiki.ClientOption {
	opts := []wiki.ClientOption{}
	if c.Language != "" {
		opts = append(opts, wiki.WithLanguage(c.Language))
	}
	if c.BaseURL != "" {
		opts = append(opts, wiki.WithBaseURL(c.BaseURL))
	}
	if c.UserAgent != "" {
		opts = append(opts, wiki.WithUserAgent(c.UserAgent))
	}
	if c.CacheTTL > 0 {
		opts = append(opts, wiki.WithCacheTTL(c.CacheTTL))
	}
	return opts
}

// Load reads configuration from the default location (~/.wikidex/config.yaml)
// and merges with environment variables. If no config file exists, it creates
// one with default values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".wikidex", "config.yaml")
	return LoadFromPath(configPath)
}

// LoadFromPath reads configuration from a specific file path and merges with
// environment variables. If the file doesn't exist, it creates one with
// default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := writeConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	// Example: WIKIDEX_STORAGE_MONGO_URI
	v.SetEnvPrefix("WIKIDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand paths with tilde
	cfg.Storage.SQLite.Path = expandPath(cfg.Storage.SQLite.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return &cfg, nil
}

// Save writes the current configuration to the default config file location.
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".wikidex", "config.yaml")
	return c.SaveToPath(configPath)
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfigFile(path, c)
}

// GetDataDir returns the wikidex data directory path (~/.wikidex).
func (c *Config) GetDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".wikidex")
}

// GetConfigPath returns the full path to the config file.
func (c *Config) GetConfigPath() string {
	return filepath.Join(c.GetDataDir(), "config.yaml")
}

// EnsureDirectories creates all necessary directories for wikidex operation.
// This includes the data directory, logs directory, and the SQLite database
// directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.GetDataDir(),
		filepath.Dir(c.Logging.File),
	}
	if c.Storage.SQLite.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Storage.SQLite.Path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Validate checks the configuration for common errors and inconsistencies.
func (c *Config) Validate() error {
	validBackends := map[string]bool{"mongo": true, "sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend '%s', must be one of: mongo, sqlite, memory", c.Storage.Backend)
	}

	switch c.Storage.Backend {
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri cannot be empty")
		}
		if c.Storage.Mongo.Database == "" {
			return fmt.Errorf("storage.mongo.database cannot be empty")
		}
		if c.Storage.Mongo.Collection == "" {
			return fmt.Errorf("storage.mongo.collection cannot be empty")
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path cannot be empty")
		}
	}

	if c.Wikipedia.Language == "" {
		return fmt.Errorf("wikipedia.language cannot be empty")
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr cannot be empty")
	}
	if c.Server.ObserverPort < 1 || c.Server.ObserverPort > 65535 {
		return fmt.Errorf("server.observer_port must be between 1 and 65535")
	}
	if c.Server.EventBuffer < 0 {
		return fmt.Errorf("server.event_buffer cannot be negative")
	}

	if c.TUI.Theme != "dark" && c.TUI.Theme != "light" {
		return fmt.Errorf("invalid theme '%s', must be 'dark' or 'light'", c.TUI.Theme)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// writeConfigFile writes a Config struct to a YAML file.
// Uses gopkg.in/yaml.v3 directly to ensure proper tag-based serialization.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
