// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package atomicfile commits file content with all-or-nothing semantics.
// The target file either keeps its previous content (and permissions) or
// is fully replaced; readers never observe a partially written file.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile atomically replaces path with data. The content is staged in a
// temporary file in the same directory, flushed to stable storage, given
// its final permissions, and then renamed over the target in one step. On
// any failure the original file is left untouched and the temporary file
// is removed best-effort.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	// 1. Ensure the parent directory exists with restrictive permissions.
	// An existing directory keeps whatever mode it already has.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// 2. Write to a temporary file in the same directory so the final
	// rename stays on one filesystem.
	f, err := os.CreateTemp(dir, ".hostwarden-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		// Best effort to clean up the failed write
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	// 3. Flush to stable storage before moving.
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// 4. Set permissions on the temporary file before moving.
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temporary file: %w", err)
	}

	// 5. Atomically move the file into place.
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to atomically rename to %s: %w", path, err)
	}

	return nil
}
