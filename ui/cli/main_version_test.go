// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"runtime/debug"
	"testing"

	"github.com/toeirei/hostwarden/buildvars"
)

func TestResolveBuildVersion_MainVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/hostwarden", Version: "v1.2.3"},
	}
	v, c, d := resolveBuildVersion(info)
	if v != "v1.2.3" {
		t.Fatalf("expected v1.2.3 got %s", v)
	}
	if c != buildvars.Commit {
		t.Fatalf("expected commit to equal buildvars.Commit (default) got %s", c)
	}
	if d != buildvars.Date {
		t.Fatalf("expected date to equal buildvars.Date (default) got %s", d)
	}
}

func TestResolveBuildVersion_DependencyFallback(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/hostwarden", Version: "(devel)"},
		Deps: []*debug.Module{
			{Path: "github.com/toeirei/hostwarden", Version: "v0.3.1-0.20260812141516-a1b2c3d4e5f6"},
		},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "v0.3.1-0.20260812141516-a1b2c3d4e5f6" {
		t.Fatalf("expected dependency version fallback got %s", v)
	}
}

func TestResolveBuildVersion_CommitFallback(t *testing.T) {
	orig := buildvars.Commit
	defer func() { buildvars.Commit = orig }()
	buildvars.Commit = "deadbeef"

	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/hostwarden", Version: "(devel)"},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "deadbeef" {
		t.Fatalf("expected commit fallback got %s", v)
	}
}

func TestResolveBuildVersion_VCSSettings(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/toeirei/hostwarden", Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc1234"},
			{Key: "vcs.time", Value: "2026-08-01T10:00:00Z"},
		},
	}
	v, c, d := resolveBuildVersion(info)
	if c != "abc1234" {
		t.Fatalf("expected vcs.revision to fill commit, got %s", c)
	}
	if d != "2026-08-01T10:00:00Z" {
		t.Fatalf("expected vcs.time to fill date, got %s", d)
	}
	if v != "abc1234" {
		t.Fatalf("expected commit promotion into version, got %s", v)
	}
}
