package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// WebDir is the directory with the companion web app; empty disables
	// static serving.
	WebDir string `mapstructure:"web_dir"`
	// InitSchema runs the PostgreSQL schema bootstrap at startup.
	InitSchema bool `mapstructure:"init_schema"`
}

// DatabaseConfig configures the direct PostgreSQL backend.
type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	PoolMin int32  `mapstructure:"pool_min"`
	PoolMax int32  `mapstructure:"pool_max"`
	// Timeout bounds a single statement round trip.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SupabaseConfig configures the REST gateway fallback. Key is sent both as
// the apikey header and the bearer credential, matching how the gateway
// authenticates anonymous service access.
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override the file: database.url -> DATABASE_URL,
	// supabase.key -> SUPABASE_KEY, and so on.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.web_dir", "")
	viper.SetDefault("server.init_schema", false)
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.pool_min", 1)
	viper.SetDefault("database.pool_max", 10)
	viper.SetDefault("database.timeout", "60s")
	viper.SetDefault("supabase.url", "")
	viper.SetDefault("supabase.key", "")
	viper.SetDefault("supabase.timeout", "10s")

	err = viper.ReadInConfig()
	// Missing config file is fine; env vars and defaults carry the rest.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
