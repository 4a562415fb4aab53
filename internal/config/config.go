package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// StoreBackend selects the record store: memory, file, redis or postgres.
	StoreBackend string `yaml:"storeBackend"`
	// StoreKey is the well-known key (redis) or row key (postgres) the
	// document lives under.
	StoreKey      string `yaml:"storeKey"`
	DataFile      string `yaml:"dataFile"`
	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	RabbitURL      string `yaml:"rabbitURL"`
	RabbitExchange string `yaml:"rabbitExchange"`

	// RegionMatch selects the region comparison policy: substring or exact.
	RegionMatch string `yaml:"regionMatch"`

	AdminName     string `yaml:"adminName"`
	AdminEmail    string `yaml:"adminEmail"`
	AdminPassword string `yaml:"adminPassword"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.StoreBackend = strings.TrimSpace(v)
	}
	if v := os.Getenv("STORE_KEY"); v != "" {
		cfg.StoreKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.DataFile = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("RABBIT_URL"); v != "" {
		cfg.RabbitURL = v
	}
	if v := os.Getenv("RABBIT_EXCHANGE"); v != "" {
		cfg.RabbitExchange = strings.TrimSpace(v)
	}
	if v := os.Getenv("REGION_MATCH"); v != "" {
		cfg.RegionMatch = strings.TrimSpace(v)
	}
	if v := os.Getenv("ADMIN_NAME"); v != "" {
		cfg.AdminName = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.AdminEmail = strings.TrimSpace(v)
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "file"
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = "barra_business_db"
	}
	if cfg.DataFile == "" {
		cfg.DataFile = "data/barra_business_db.json"
	}
	if cfg.RegionMatch == "" {
		cfg.RegionMatch = "substring"
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.AdminEmail) == "" {
		return errors.New("config: adminEmail is required (set in config.yaml or ADMIN_EMAIL)")
	}
	if cfg.AdminPassword == "" {
		return errors.New("config: adminPassword is required (set in config.yaml or ADMIN_PASSWORD)")
	}
	switch cfg.StoreBackend {
	case "memory":
	case "file":
		if strings.TrimSpace(cfg.DataFile) == "" {
			return errors.New("config: dataFile is required for the file backend")
		}
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required for the redis backend")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown storeBackend %q", cfg.StoreBackend)
	}
	switch cfg.RegionMatch {
	case "substring", "exact":
	default:
		return fmt.Errorf("config: unknown regionMatch %q (substring or exact)", cfg.RegionMatch)
	}
	return nil
}
