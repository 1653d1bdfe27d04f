// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/hostwarden/internal/config"
)

// TestLoadConfig_EnvVarParsing tests that HOSTWARDEN_* environment variables are read correctly
func TestLoadConfig_EnvVarParsing(t *testing.T) {
	tmp := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	// Set environment variables with HOSTWARDEN_ prefix
	_ = os.Setenv("HOSTWARDEN_KNOWN_HOSTS", "/srv/ssh/known_hosts")
	_ = os.Setenv("HOSTWARDEN_LANGUAGE", "de")
	_ = os.Setenv("HOSTWARDEN_HISTORY_ENABLED", "false")
	defer func() {
		_ = os.Unsetenv("HOSTWARDEN_KNOWN_HOSTS")
		_ = os.Unsetenv("HOSTWARDEN_LANGUAGE")
		_ = os.Unsetenv("HOSTWARDEN_HISTORY_ENABLED")
	}()

	resetViper()
	defer resetViper()

	defaults := map[string]any{"known_hosts": "./known_hosts", "language": "en", "history.enabled": true}
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, defaults, nil)

	// LoadConfig returns ConfigFileNotFoundError when no file is used, but env vars should still be loaded
	if err == nil {
		t.Fatalf("expected ConfigFileNotFoundError, got nil")
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}

	// Verify environment variables were parsed correctly (with underscore to dot conversion)
	if got.KnownHosts != "/srv/ssh/known_hosts" {
		t.Fatalf("expected known_hosts from env, got %q", got.KnownHosts)
	}
	if got.Language != "de" {
		t.Fatalf("expected de from env, got %q", got.Language)
	}
	if got.History.Enabled {
		t.Fatalf("expected history disabled from env")
	}
}

// TestLoadConfig_FlagBindingOverridesEnv tests that CLI flags take precedence over environment variables
func TestLoadConfig_FlagBindingOverridesEnv(t *testing.T) {
	tmp := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	// Set env var
	_ = os.Setenv("HOSTWARDEN_LANGUAGE", "en")
	defer func() { _ = os.Unsetenv("HOSTWARDEN_LANGUAGE") }()

	resetViper()
	defer resetViper()

	cmd := &cobra.Command{}
	cmd.Flags().String("language", "", "language")
	// Set flag value (should override env)
	if err := cmd.Flags().Set("language", "de"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	defaults := map[string]any{"known_hosts": "./known_hosts", "language": "en"}
	got, err := cfg.LoadConfig[cfg.Config](cmd, defaults, nil)

	if err == nil {
		t.Fatalf("expected ConfigFileNotFoundError, got nil")
	}

	// Flag should override env
	if got.Language != "de" {
		t.Fatalf("expected de from flag (not en from env), got %q", got.Language)
	}
}

// TestLoadConfig_LocalOverlayMerged tests that a .hostwarden.yaml in the
// current directory is merged over the primary config file.
func TestLoadConfig_LocalOverlayMerged(t *testing.T) {
	tmp := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	// Create overlay .hostwarden.yaml with only language setting
	overlayYaml := "language: de\n"
	if err := os.WriteFile(".hostwarden.yaml", []byte(overlayYaml), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	// Create primary ./hostwarden.yaml without language (so the overlay can merge)
	primaryYaml := "known_hosts: ./primary_known_hosts\n"
	if err := os.WriteFile("hostwarden.yaml", []byte(primaryYaml), 0o600); err != nil {
		t.Fatalf("write primary: %v", err)
	}

	resetViper()
	defer resetViper()

	defaults := map[string]any{"known_hosts": "./known_hosts", "language": "en"}
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, defaults, nil)

	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	// Primary file should be used for known_hosts
	if got.KnownHosts != "./primary_known_hosts" {
		t.Fatalf("expected ./primary_known_hosts from primary, got %q", got.KnownHosts)
	}
	// Overlay file should provide language (merged in)
	if got.Language != "de" {
		t.Fatalf("expected de from merged overlay config, got %q", got.Language)
	}
}

// TestLoadConfig_ExplicitFileOverridesAll tests that explicit file path takes precedence
func TestLoadConfig_ExplicitFileOverridesAll(t *testing.T) {
	tmp := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "noconfig"))
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	// Create ./hostwarden.yaml (lower priority)
	localYaml := "known_hosts: ./local_known_hosts\nlanguage: en\n"
	if err := os.WriteFile("hostwarden.yaml", []byte(localYaml), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	// Create explicit config (higher priority)
	explicitYaml := "known_hosts: ./explicit_known_hosts\nlanguage: de\n"
	explicitPath := filepath.Join(tmp, "explicit.yaml")
	if err := os.WriteFile(explicitPath, []byte(explicitYaml), 0o600); err != nil {
		t.Fatalf("write explicit config: %v", err)
	}

	resetViper()
	defer resetViper()

	defaults := map[string]any{"known_hosts": "./known_hosts", "language": "en"}
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, defaults, &explicitPath)

	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	// Explicit file should override ./hostwarden.yaml
	if got.KnownHosts != "./explicit_known_hosts" {
		t.Fatalf("expected ./explicit_known_hosts from explicit file, got %q", got.KnownHosts)
	}
	if got.Language != "de" {
		t.Fatalf("expected de from explicit file, got %q", got.Language)
	}
}
