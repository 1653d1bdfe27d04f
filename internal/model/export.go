// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.
package model

import "time"

// ExportData is a container for everything written by a history export.
// It bundles the recorded sync runs with the current trust store content
// so an export is a self-contained snapshot.
type ExportData struct {
	// SchemaVersion helps in handling format changes during import.
	SchemaVersion int `json:"schema_version"`

	// GeneratedAt is the UTC time the export was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Version is the hostwarden version that produced the export.
	Version string `json:"version"`

	// TrustStorePath is the known_hosts file the entries refer to.
	TrustStorePath string `json:"trust_store_path"`

	// TrustStore is the raw content of the known_hosts file at export
	// time, empty if the file did not exist.
	TrustStore string `json:"trust_store"`

	// Entries holds the recorded sync runs, newest first.
	Entries []HistoryEntry `json:"entries"`
}

// ExportSchemaVersion is the current ExportData schema version.
const ExportSchemaVersion = 1
