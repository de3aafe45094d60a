// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Wordlists WordlistsConfig `mapstructure:"wordlists"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Review    ReviewConfig    `mapstructure:"review"`
}

type WordlistsConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type StorageConfig struct {
	DataDirectory string `mapstructure:"data_directory" validate:"required"`
}

type RemoteConfig struct {
	BaseURL      string `mapstructure:"base_url" validate:"omitempty,url"`
	FolderName   string `mapstructure:"folder_name" validate:"required"`
	FileName     string `mapstructure:"file_name" validate:"required"`
	APIToken     string `mapstructure:"api_token"`
	RefreshToken string `mapstructure:"refresh_token"`
}

type SyncConfig struct {
	Auto                  bool `mapstructure:"auto"`
	DebounceMilliseconds  int  `mapstructure:"debounce_milliseconds" validate:"gte=0"`
	ConflictWindowMinutes int  `mapstructure:"conflict_window_minutes" validate:"gte=0"`
	AlwaysBumpVersion     bool `mapstructure:"always_bump_version"`
}

// Debounce returns the auto-sync debounce as a duration.
func (c SyncConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMilliseconds) * time.Millisecond
}

// ConflictWindow returns the merge conflict window as a duration.
func (c SyncConfig) ConflictWindow() time.Duration {
	return time.Duration(c.ConflictWindowMinutes) * time.Minute
}

type ReviewConfig struct {
	NewItemLimit int `mapstructure:"new_item_limit" validate:"gte=0"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vocasync")
	}

	v.SetDefault("wordlists.directory", "wordlists")
	v.SetDefault("storage.data_directory", filepath.Join("data", "local"))
	v.SetDefault("remote.folder_name", "vocasync")
	v.SetDefault("remote.file_name", "snapshot.json")
	v.SetDefault("sync.debounce_milliseconds", 1000)
	v.SetDefault("sync.conflict_window_minutes", 5)
	v.SetDefault("review.new_item_limit", 10)

	// Bind remote credentials to environment variables only (not from config file)
	if err := v.BindEnv("remote.api_token", "VOCASYNC_API_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind VOCASYNC_API_TOKEN environment variable: %w", err)
	}
	if err := v.BindEnv("remote.refresh_token", "VOCASYNC_REFRESH_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind VOCASYNC_REFRESH_TOKEN environment variable: %w", err)
	}
	if err := v.BindEnv("remote.base_url", "VOCASYNC_API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind VOCASYNC_API_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
