package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

const defaultPageSize = 10

// FileConfig represents configuration loaded from YAML. Environment
// variables override file values.
type FileConfig struct {
	Port          string `yaml:"port" env:"TOKOBUKU_PORT"`
	LogLevel      string `yaml:"logLevel" env:"TOKOBUKU_LOG_LEVEL"`
	APIBaseURL    string `yaml:"apiBaseURL" env:"TOKOBUKU_API_BASE_URL"`
	TokenFile     string `yaml:"tokenFile" env:"TOKOBUKU_TOKEN_FILE"`
	RedisAddr     string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	PageSize      int    `yaml:"pageSize" env:"TOKOBUKU_PAGE_SIZE"`
}

// Load reads config from path (defaults to config.yaml), then applies
// environment overrides and defaults.
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
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.TokenFile == "" && cfg.RedisAddr == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home dir for token file: %w", err)
		}
		cfg.TokenFile = filepath.Join(home, ".tokobuku", "token")
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or TOKOBUKU_PORT)")
	}
	if cfg.APIBaseURL == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or TOKOBUKU_API_BASE_URL)")
	}
	return nil
}
