// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config provides configuration loading, merging, and persistence
// helpers for Hostwarden. It uses Viper for file/env/flag parsing and exposes
// utility functions to read/write configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RuntimeOS mirrors runtime.GOOS so tests can branch on platform behavior.
var RuntimeOS = runtime.GOOS

// HistoryConfig controls the local sync history store.
type HistoryConfig struct {
	// Enabled toggles recording of sync runs into the history database.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the SQLite database file holding the history. Empty means
	// the per-user default under the hostwarden config directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// Config holds all user-tunable settings for Hostwarden.
type Config struct {
	// KnownHosts is the known_hosts file to reconcile.
	KnownHosts string `mapstructure:"known_hosts" yaml:"known_hosts"`

	// Endpoint is the GitHub meta API URL serving the published host keys.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// TimeoutSeconds bounds the meta API request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// Language selects the output locale (e.g. "en", "de").
	Language string `mapstructure:"language" yaml:"language"`

	// History configures the local sync history store.
	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Hostwarden")
		default: // Linux, macOS, etc.
			configDir = "/etc/hostwarden"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "hostwarden")
	}

	return filepath.Join(configDir, "hostwarden.yaml"), nil
}

// DefaultKnownHostsPath returns the per-user OpenSSH known_hosts location.
func DefaultKnownHostsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ssh", "known_hosts")
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

// DefaultHistoryPath returns the per-user location of the sync history
// database.
func DefaultHistoryPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "hostwarden-history.db"
	}
	return filepath.Join(configDir, "hostwarden", "history.db")
}

// LoadConfig assembles the effective configuration from defaults, config
// files, environment variables and command-line flags, in ascending order
// of precedence. When no config file exists the returned error is a
// viper.ConfigFileNotFoundError and the config is still populated from
// the remaining sources, so callers can detect a first run.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additional_config_file_path *string) (T, error) {
	var c T
	var notFound error
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName("hostwarden")
	v.SetConfigType("yaml")

	// 3. An explicit config file path from the --config flag has the
	// highest precedence for file-based configuration. A missing or
	// zero-length candidate is treated as not found.
	if additional_config_file_path != nil {
		fi, err := os.Stat(*additional_config_file_path)
		if err != nil || fi.Size() == 0 {
			return c, viper.ConfigFileNotFoundError{}
		}
		v.SetConfigFile(*additional_config_file_path)
	}

	// 4. Add standard config locations
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for hostwarden.yaml in current dir

	// 5. Read in the primary config file. A missing file is reported to
	// the caller as a sentinel after the other sources were applied.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	}

	// 6. Merge a `.hostwarden.yaml` overlay from the current directory,
	// so a repository can pin its own settings.
	mergeLocalConfig(v)

	// 7. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("hostwarden")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 8. Bind command-line flags
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	// parse config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// mergeLocalConfig checks for a `.hostwarden.yaml` file in the current
// directory and merges it into the viper configuration if found.
func mergeLocalConfig(v *viper.Viper) {
	localConfigFile := ".hostwarden.yaml"
	if _, err := os.Stat(localConfigFile); err == nil {
		// File exists, let's try to merge it.
		v.SetConfigFile(localConfigFile)
		// MergeInConfig errors on a malformed file; ignore it here so a
		// broken overlay cannot prevent startup.
		_ = v.MergeInConfig()
		// Reset the config file path to avoid side effects.
		v.SetConfigFile("")
	}
}

// WriteConfigFile persists the given configuration as YAML to the standard
// user or system location.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		return err
	}

	return nil
}
