package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexZinkM/sui-passkey/internal/storage"
	"github.com/AlexZinkM/sui-passkey/sui"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileEnv names the optional YAML config file. Environment variables override
// values read from it.
const FileEnv = "PASSKEY_CONFIG_FILE"

// Config contains all configuration parameters for the application.
type Config struct {
	Port               string        `envconfig:"PORT" yaml:"port"`
	Network            string        `envconfig:"PASSKEY_NETWORK" yaml:"network"`
	RPCURL             string        `envconfig:"SUI_RPC_URL" yaml:"rpcUrl"`
	RPID               string        `envconfig:"PASSKEY_RP_ID" yaml:"rpId"`
	RPName             string        `envconfig:"PASSKEY_RP_NAME" yaml:"rpName"`
	DisplayName        string        `envconfig:"PASSKEY_DISPLAY_NAME" yaml:"displayName"`
	StorageBackend     string        `envconfig:"STORAGE_BACKEND" yaml:"storageBackend"`
	StoragePath        string        `envconfig:"STORAGE_PATH" yaml:"storagePath"`
	StorageScope       string        `envconfig:"STORAGE_SCOPE" yaml:"storageScope"`
	PollInterval       time.Duration `envconfig:"SUI_POLL_INTERVAL" yaml:"pollInterval"`
	WaitTimeout        time.Duration `envconfig:"SUI_WAIT_TIMEOUT" yaml:"waitTimeout"`
	LogLevel           string        `envconfig:"LOG_LEVEL" yaml:"logLevel"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" yaml:"corsAllowedOrigins"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration: defaults, then the YAML file (file argument, or
// PASSKEY_CONFIG_FILE when empty), then environment variables.
func Init(file string) error {
	c, err := Load(file)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load builds a Config without touching the global instance.
func Load(file string) (*Config, error) {
	if file == "" {
		file = os.Getenv(FileEnv)
	}

	c := &Config{}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
		}
	}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() error {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Network == "" {
		c.Network = string(sui.Testnet)
	}
	c.Network = strings.ToLower(strings.TrimSpace(c.Network))
	if c.RPCURL == "" {
		c.RPCURL = sui.Network(c.Network).FullnodeURL()
	}
	if c.RPID == "" {
		c.RPID = "localhost"
	}
	if c.RPName == "" {
		c.RPName = c.RPID
	}
	if c.DisplayName == "" {
		c.DisplayName = "Sui Passkey"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = storage.BackendFile
	}
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if c.StorageScope == "" {
		c.StorageScope = "default"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = 60 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"http://localhost:" + c.Port}
	}

	if c.StoragePath == "" && c.StorageBackend != storage.BackendMemory {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate config dir, set STORAGE_PATH: %w", err)
		}
		dir = filepath.Join(dir, "sui-passkey")
		switch c.StorageBackend {
		case storage.BackendLevelDB:
			c.StoragePath = filepath.Join(dir, "leveldb")
		case storage.BackendSQLite:
			c.StoragePath = filepath.Join(dir, "storage.db")
		default:
			c.StoragePath = filepath.Join(dir, "storage.json")
		}
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := sui.ParseNetwork(c.Network); err != nil {
		return err
	}
	switch c.StorageBackend {
	case storage.BackendMemory, storage.BackendFile, storage.BackendLevelDB, storage.BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.RPID == "" {
		return errors.New("PASSKEY_RP_ID cannot be empty")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetNetwork returns the Sui network the wallet is bound to
func GetNetwork() sui.Network {
	return sui.Network(Get().Network)
}

// GetRPCURL returns Sui fullnode URL from configuration
func GetRPCURL() string {
	return Get().RPCURL
}

// StorageOptions returns the storage backend selection.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend: c.StorageBackend,
		Path:    c.StoragePath,
		Scope:   c.StorageScope,
	}
}
