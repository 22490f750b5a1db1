package config

// Package config provides a reusable loader for gossip client configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ceppelli/solana-gossip-tui/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for the gossip client. It mirrors the
// structure of the YAML files under cmd/config.
type Config struct {
	Gossip struct {
		Entrypoint       string        `mapstructure:"entrypoint" json:"entrypoint"`
		BindAddr         string        `mapstructure:"bind_addr" json:"bind_addr"`
		ShredVersion     uint16        `mapstructure:"shred_version" json:"shred_version"`
		HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" json:"handshake_timeout"`
	} `mapstructure:"gossip" json:"gossip"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		JSON  bool   `mapstructure:"json" json:"json"`
	} `mapstructure:"logging" json:"logging"`

	Metrics struct {
		Enabled    bool   `mapstructure:"enabled" json:"enabled"`
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"metrics" json:"metrics"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // reads process environment variables; no .env file is loaded

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the GOSSIP_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("GOSSIP_ENV", ""))
}
