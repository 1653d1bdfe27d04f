package model

import (
	"fmt"
	"time"
)

// HostKey represents a single published SSH host key: the algorithm tag
// and the base64-encoded key material, without any host prefix.
type HostKey struct {
	Algorithm string `json:"algorithm"`
	KeyData   string `json:"key_data"`
}

// String returns the "algorithm material" representation used in
// known_hosts lines and in the GitHub meta API.
func (k HostKey) String() string {
	return fmt.Sprintf("%s %s", k.Algorithm, k.KeyData)
}

// Line returns the full known_hosts line for the given host.
func (k HostKey) Line(host string) string {
	return fmt.Sprintf("%s %s %s", host, k.Algorithm, k.KeyData)
}

// KeyOrigin identifies where a set of host keys was obtained from.
type KeyOrigin string

const (
	// OriginAPI means the keys were fetched live from the GitHub meta API.
	OriginAPI KeyOrigin = "api"

	// OriginFallback means the embedded snapshot was used because the API
	// was unreachable, returned garbage, or was skipped on request.
	OriginFallback KeyOrigin = "fallback"
)

// SyncReport summarizes a single reconciliation run against a
// known_hosts file.
type SyncReport struct {
	// Path is the known_hosts file that was reconciled.
	Path string

	// Origin tells whether the key material came from the API or the
	// embedded fallback snapshot.
	Origin KeyOrigin

	// Preserved is the number of unmanaged lines carried over verbatim.
	Preserved int

	// Removed is the number of managed lines dropped from the old file.
	Removed int

	// Added is the number of fresh managed lines written.
	Added int

	// Changed reports whether the new content differs from the old file.
	Changed bool

	// DryRun is true when no file was written.
	DryRun bool

	// Diff holds a unified listing of removed/added lines. Only populated
	// for dry runs.
	Diff string

	// BackupPath is the path of the pre-sync backup copy, if one was made.
	BackupPath string
}

// HistoryEntry records one completed sync run in the local history store.
type HistoryEntry struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin"`
	Path      string    `json:"path"`
	Preserved int       `json:"preserved"`
	Removed   int       `json:"removed"`
	Added     int       `json:"added"`
	Changed   bool      `json:"changed"`
	Version   string    `json:"version"`
}
