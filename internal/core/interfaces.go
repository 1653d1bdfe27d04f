// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core contains the command pipelines behind the CLI. Dependencies
// are accepted as small interfaces so tests can inject fakes; the real
// implementations live in internal/source and internal/db.
package core

import (
	"context"

	"github.com/toeirei/hostwarden/internal/model"
)

// KeySource provides the official SSH host keys for the managed domains.
type KeySource interface {
	// Fetch returns the published key set, or an error when the API is
	// unreachable or returns nothing usable.
	Fetch(ctx context.Context) ([]model.HostKey, error)

	// Resolve returns a usable key set no matter what, degrading to the
	// embedded fallback snapshot when the live path cannot serve. With
	// preferFallback set the API is not contacted at all.
	Resolve(ctx context.Context, preferFallback bool) ([]model.HostKey, model.KeyOrigin)

	// Domains lists the hosts the keys apply to.
	Domains() []string
}

// HistoryRecorder persists one history row per completed sync run.
type HistoryRecorder interface {
	RecordSync(entry model.HistoryEntry) error
}

// HistoryReader reads back recorded sync history.
type HistoryReader interface {
	GetHistory(limit int) ([]model.HistoryEntry, error)
}
