// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the Bun-backed SQLite implementation of the Store
// interface. Low-level query helpers take a *bun.DB so they stay testable
// against any open database.
package db

import (
	"context"
	"time"

	"github.com/toeirei/hostwarden/internal/model"
	"github.com/uptrace/bun"
)

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	bun *bun.DB
}

// historyRow maps the sync_history table for Bun queries.
type historyRow struct {
	bun.BaseModel `bun:"table:sync_history"`
	ID            int       `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"timestamp"`
	Origin        string    `bun:"origin"`
	Path          string    `bun:"path"`
	Preserved     int       `bun:"preserved"`
	Removed       int       `bun:"removed"`
	Added         int       `bun:"added"`
	Changed       bool      `bun:"changed"`
	Version       string    `bun:"version"`
}

func historyRowToModel(r historyRow) model.HistoryEntry {
	return model.HistoryEntry{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Origin:    r.Origin,
		Path:      r.Path,
		Preserved: r.Preserved,
		Removed:   r.Removed,
		Added:     r.Added,
		Changed:   r.Changed,
		Version:   r.Version,
	}
}

// RecordSync appends one history row for a completed sync run.
func (s *SqliteStore) RecordSync(entry model.HistoryEntry) error {
	return RecordSyncBun(s.bun, entry)
}

// GetHistory returns history entries, most recent first.
func (s *SqliteStore) GetHistory(limit int) ([]model.HistoryEntry, error) {
	return GetHistoryBun(s.bun, limit)
}

// PruneHistory deletes all but the newest keep rows.
func (s *SqliteStore) PruneHistory(keep int) (int, error) {
	return PruneHistoryBun(s.bun, keep)
}

// Close closes the underlying database connection.
func (s *SqliteStore) Close() error {
	return s.bun.Close()
}

// RecordSyncBun inserts a sync history row. A zero timestamp is filled with
// the current time.
func RecordSyncBun(bdb *bun.DB, entry model.HistoryEntry) error {
	ctx := context.Background()
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := bdb.NewInsert().Model(&historyRow{
		Timestamp: ts,
		Origin:    entry.Origin,
		Path:      entry.Path,
		Preserved: entry.Preserved,
		Removed:   entry.Removed,
		Added:     entry.Added,
		Changed:   entry.Changed,
		Version:   entry.Version,
	}).Exec(ctx)
	return err
}

// GetHistoryBun returns history rows ordered newest first. A limit of 0
// returns everything.
func GetHistoryBun(bdb *bun.DB, limit int) ([]model.HistoryEntry, error) {
	ctx := context.Background()
	var rows []historyRow
	q := bdb.NewSelect().Model(&rows).OrderExpr("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, historyRowToModel(r))
	}
	return out, nil
}

// PruneHistoryBun deletes all rows except the newest keep ones and reports
// how many rows were removed. Uses a raw DELETE because Bun requires a WHERE
// clause for Delete queries to prevent accidental full-table deletes.
func PruneHistoryBun(bdb *bun.DB, keep int) (int, error) {
	ctx := context.Background()
	if keep < 0 {
		keep = 0
	}
	res, err := bdb.NewRaw(
		"DELETE FROM sync_history WHERE id NOT IN (SELECT id FROM sync_history ORDER BY timestamp DESC, id DESC LIMIT ?)",
		keep,
	).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Driver without RowsAffected support; the delete itself succeeded.
		return 0, nil
	}
	return int(n), nil
}
