// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/hostwarden/internal/model"
)

// ExportOptions control a history export.
type ExportOptions struct {
	// TrustStorePath is the known_hosts file whose content is embedded in
	// the export alongside the history.
	TrustStorePath string

	// Version is the tool version stamped into the export.
	Version string
}

// RunExportCmd writes the full sync history plus the current trust-store
// content as zstd-compressed, pretty-printed JSON to w.
func RunExportCmd(ctx context.Context, hist HistoryReader, opts ExportOptions, w io.Writer) error {
	entries, err := hist.GetHistory(0)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	// A missing trust store exports as empty content; the export should
	// still carry the history.
	content, err := readTrustStore(opts.TrustStorePath)
	if err != nil {
		return err
	}

	data := model.ExportData{
		SchemaVersion:  model.ExportSchemaVersion,
		GeneratedAt:    time.Now().UTC(),
		Version:        opts.Version,
		TrustStorePath: opts.TrustStorePath,
		TrustStore:     content,
		Entries:        entries,
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}
