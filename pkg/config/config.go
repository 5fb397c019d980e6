package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Client  ClientConfig  `mapstructure:"client"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	GinMode   string `mapstructure:"gin_mode"`
	StaticDir string `mapstructure:"static_dir"`
}

type StorageConfig struct {
	Driver  string `mapstructure:"driver"` // "file" or "sqlite"
	DataDir string `mapstructure:"data_dir"`
}

type ClientConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("client.base_url", "http://localhost:3001")

	bindings := map[string][]string{
		"server.host":       {"SERVER_HOST"},
		"server.port":       {"SERVER_PORT", "PORT"},
		"server.gin_mode":   {"GIN_MODE"},
		"server.static_dir": {"STATIC_DIR"},
		"storage.driver":    {"STORAGE_DRIVER"},
		"storage.data_dir":  {"DATA_DIR"},
		"client.base_url":   {"ESTIMATOR_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	// A missing config file is not an error, env vars and defaults apply.
	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch config.Storage.Driver {
	case "file", "sqlite":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if !filepath.IsAbs(config.Storage.DataDir) {
		config.Storage.DataDir, _ = filepath.Abs(config.Storage.DataDir)
	}
	if config.Server.StaticDir != "" && !filepath.IsAbs(config.Server.StaticDir) {
		config.Server.StaticDir, _ = filepath.Abs(config.Server.StaticDir)
	}

	return config, nil
}
