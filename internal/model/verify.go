// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package model // import "github.com/toeirei/hostwarden/internal/model"

import "fmt"

// HostVerification contains the comparison result for a single managed
// host between the local known_hosts file and the official key set.
type HostVerification struct {
	// Host is the managed host name this result applies to.
	Host string

	// Present is the number of official keys found locally for the host.
	Present int

	// MissingKeys are official keys that have no matching local line.
	MissingKeys []HostKey

	// UnknownKeys are local key lines for the host that do not match any
	// official key. These are raw strings since they may carry material
	// we cannot attribute to GitHub.
	UnknownKeys []string
}

// InSync returns true if the host has every official key and nothing else.
func (h HostVerification) InSync() bool {
	return len(h.MissingKeys) == 0 && len(h.UnknownKeys) == 0
}

// VerifyReport contains the full verification outcome across all
// managed hosts.
type VerifyReport struct {
	// Origin tells which key source the comparison ran against.
	Origin KeyOrigin

	// OfficialKeys is the number of keys in the reference set.
	OfficialKeys int

	// Hosts holds one entry per managed host, in canonical order.
	Hosts []HostVerification
}

// InSync returns true if every managed host matches the official set.
func (r *VerifyReport) InSync() bool {
	for _, h := range r.Hosts {
		if !h.InSync() {
			return false
		}
	}
	return true
}

// Summary returns a human-readable one-line summary of the verification.
func (r *VerifyReport) Summary() string {
	if r.InSync() {
		return fmt.Sprintf("in sync (%d official keys, source: %s)", r.OfficialKeys, r.Origin)
	}

	missing, unknown := 0, 0
	for _, h := range r.Hosts {
		missing += len(h.MissingKeys)
		unknown += len(h.UnknownKeys)
	}
	return fmt.Sprintf("out of sync: %d missing, %d unknown (source: %s)", missing, unknown, r.Origin)
}
