package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds server settings. Environment variables win over the
// optional YAML file, which wins over defaults.
type Config struct {
	Port        string `env:"PORT" yaml:"port"`
	DataDir     string `env:"DATA_DIR" yaml:"data_dir"`
	DBPath      string `env:"DB_PATH" yaml:"db_path"`
	DefaultLang string `env:"DEFAULT_LANG" yaml:"default_lang"`
}

func defaults() Config {
	return Config{
		Port:        "8080",
		DataDir:     "data",
		DBPath:      "rosters.db",
		DefaultLang: "ko",
	}
}

// Load builds the config: defaults, then the YAML file at CONFIG_FILE
// (if set), then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
