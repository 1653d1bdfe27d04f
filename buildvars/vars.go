// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Version is set at link time via `-ldflags -X github.com/toeirei/hostwarden/buildvars.Version=...`.
// It will be empty for local or development builds.
var Version string

// Commit is set at link time to the git revision the binary was built from.
var Commit string

// Date is set at link time to the build timestamp.
var Date string

// VersionOrDefault returns `Version` if set, otherwise returns the provided default.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}
