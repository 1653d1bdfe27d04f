// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/hostwarden/internal/config"
)

func resetViper() {
	// Reset global viper state between tests
	viper.Reset()
}

func TestLoadConfig_EmptyCandidate_TreatedAsNotFound(t *testing.T) {
	tmp := t.TempDir()
	// Force user config dir to tmp by setting XDG_CONFIG_HOME
	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	// Create the directory but write a zero-length file
	cfgDir := filepath.Join(tmp, "hostwarden")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	emptyPath := filepath.Join(cfgDir, "hostwarden.yaml")
	f, err := os.Create(emptyPath)
	if err != nil {
		t.Fatalf("create empty file: %v", err)
	}
	_ = f.Close()

	resetViper()
	defer resetViper()

	defaults := map[string]any{"known_hosts": "./known_hosts", "language": "en"}
	_, err = cfg.LoadConfig[cfg.Config](&cobra.Command{}, defaults, &emptyPath)
	if err == nil {
		t.Fatalf("expected ConfigFileNotFoundError for empty candidate, got nil")
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
}

func TestLoadConfig_NoFileStillPopulatesDefaults(t *testing.T) {
	tmp := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	resetViper()
	defer resetViper()

	defaults := map[string]any{
		"known_hosts":     "./known_hosts",
		"timeout_seconds": 10,
		"language":        "en",
		"history.enabled": true,
	}
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, defaults, nil)
	if err == nil {
		t.Fatalf("expected ConfigFileNotFoundError on first run, got nil")
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}

	if got.KnownHosts != "./known_hosts" {
		t.Errorf("expected default known_hosts, got %q", got.KnownHosts)
	}
	if got.TimeoutSeconds != 10 {
		t.Errorf("expected default timeout 10, got %d", got.TimeoutSeconds)
	}
	if !got.History.Enabled {
		t.Error("expected history enabled by default")
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	tmp := t.TempDir()
	_ = os.Setenv("XDG_CONFIG_HOME", tmp)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	resetViper()
	defer resetViper()

	c := cfg.Config{}
	c.KnownHosts = "/home/user/.ssh/known_hosts"
	c.Endpoint = "https://api.github.com/meta"
	c.Language = "en"

	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file at %s, read error: %v", path, err)
	}
	if !strings.Contains(string(data), "known_hosts") {
		t.Fatalf("expected known_hosts key in written config, got: %s", data)
	}
}

func TestWriteConfigFile_DirectoryCreation(t *testing.T) {
	tmp := t.TempDir()
	// Use a nested path that doesn't exist yet
	nestedPath := filepath.Join(tmp, "nested", "deep", "path")
	_ = os.Setenv("XDG_CONFIG_HOME", nestedPath)
	defer func() { _ = os.Unsetenv("XDG_CONFIG_HOME") }()

	resetViper()
	defer resetViper()

	c := cfg.Config{}
	c.KnownHosts = "./known_hosts"
	c.Language = "en"

	// This should create all intermediate directories
	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed to create directories: %v", err)
	}

	expectedFile := filepath.Join(nestedPath, "hostwarden", "hostwarden.yaml")
	if _, err := os.Stat(expectedFile); err != nil {
		t.Fatalf("expected file %s to exist, stat error: %v", expectedFile, err)
	}
}

func TestDefaultKnownHostsPath(t *testing.T) {
	got := cfg.DefaultKnownHostsPath()
	want := filepath.Join(".ssh", "known_hosts")
	if !strings.HasSuffix(got, want) {
		t.Errorf("expected default path ending in %q, got %q", want, got)
	}
}
