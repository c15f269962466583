package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is one environment's section of config.toml plus secrets read from
// the environment.
type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// integrations
	OpenAIBaseURL  string `toml:"openai_base_url"`
	MetricsEnabled bool   `toml:"metrics_enabled"`

	// secrets, never read from the TOML file
	DBURL        string `toml:"-"`
	OpenAIAPIKey string `toml:"-"`
}

type tomlConfig struct {
	Development *Config
	Production  *Config
}

func (t *tomlConfig) get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in config", env)
	}
	return cfg, nil
}

// loadConfig reads the env section of the TOML file at path, applies defaults
// and fills secrets from the environment (and .env when present).
func loadConfig(env, path string) (*Config, error) {
	var t tomlConfig
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg, err := t.get(env)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyDefaults(cfg)
	cfg.DBURL = os.Getenv("DB_URL")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL not set")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com"
	}
}
