// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/toeirei/hostwarden/internal/atomicfile"
	"github.com/toeirei/hostwarden/internal/i18n"
	"github.com/toeirei/hostwarden/internal/knownhosts"
	"github.com/toeirei/hostwarden/internal/logging"
	"github.com/toeirei/hostwarden/internal/model"
)

// trustStoreMode is the permission set for the known_hosts file and its
// backups. SSH expects the file to be private to the owner.
const trustStoreMode = os.FileMode(0o600)

// SyncOptions control a single trust-store synchronization run.
type SyncOptions struct {
	// Path is the known_hosts file to reconcile.
	Path string

	// DryRun renders the would-be changes without touching the file.
	DryRun bool

	// UseFallback skips the API and uses the embedded key snapshot.
	UseFallback bool

	// Backup copies the previous file aside before committing.
	Backup bool

	// StyledDiff renders the dry-run diff with terminal colors.
	StyledDiff bool

	// Version is the tool version recorded in the sync history.
	Version string
}

// RunSyncCmd reconciles the known_hosts file at opts.Path against the
// official key set. A missing file is treated as empty. Unmanaged lines
// survive byte for byte; managed lines are replaced by a fresh set. The
// file is only ever replaced atomically, so a failure at any point leaves
// the previous content intact.
func RunSyncCmd(ctx context.Context, src KeySource, hist HistoryRecorder, opts SyncOptions) (*model.SyncReport, error) {
	existing, err := readTrustStore(opts.Path)
	if err != nil {
		return nil, err
	}

	keys, origin := src.Resolve(ctx, opts.UseFallback)
	result := knownhosts.Reconcile(existing, src.Domains(), keys)
	changed := result.Content != existing

	report := &model.SyncReport{
		Path:      opts.Path,
		Origin:    origin,
		Preserved: result.Preserved,
		Removed:   result.Removed,
		Added:     result.Added,
		Changed:   changed,
		DryRun:    opts.DryRun,
	}

	if opts.DryRun {
		report.Diff = knownhosts.Diff(existing, result.Content, opts.StyledDiff)
		return report, nil
	}

	if changed {
		if opts.Backup {
			backupPath, err := backupTrustStore(opts.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to back up trust store: %w", err)
			}
			report.BackupPath = backupPath
		}
		if err := atomicfile.WriteFile(opts.Path, []byte(result.Content), trustStoreMode); err != nil {
			return nil, fmt.Errorf("failed to write trust store: %w", err)
		}
	}

	// The sync itself succeeded at this point; a history hiccup must not
	// turn it into a failure.
	if hist != nil {
		entry := model.HistoryEntry{
			Timestamp: time.Now().UTC(),
			Origin:    string(origin),
			Path:      opts.Path,
			Preserved: result.Preserved,
			Removed:   result.Removed,
			Added:     result.Added,
			Changed:   changed,
			Version:   opts.Version,
		}
		if err := hist.RecordSync(entry); err != nil {
			logging.Warnf("%s", i18n.T("sync.warn_history", err))
		}
	}

	return report, nil
}

// readTrustStore returns the current content of the trust store, treating
// a missing file as empty.
func readTrustStore(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read trust store: %w", err)
	}
	return string(data), nil
}

// backupTrustStore copies the current trust store to a timestamped .bak
// file next to it and returns the backup path. A missing original is not
// an error; it simply means there is nothing to back up.
func backupTrustStore(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.hostwarden-%s.bak", path, stamp)
	if err := os.WriteFile(backupPath, data, trustStoreMode); err != nil {
		return "", err
	}
	return backupPath, nil
}
