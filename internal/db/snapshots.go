package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"xiv-profit/internal/engine"
)

// StoredSnapshot pairs a persisted market snapshot with its row id.
type StoredSnapshot struct {
	ID       string                `json:"id"`
	Snapshot engine.MarketSnapshot `json:"snapshot"`
}

// SaveSnapshot persists a snapshot and returns its generated id.
func (d *DB) SaveSnapshot(snap engine.MarketSnapshot) (string, error) {
	items, err := json.Marshal(snap.Items)
	if err != nil {
		return "", fmt.Errorf("encode snapshot items: %w", err)
	}
	id := uuid.NewString()
	_, err = d.sql.Exec(`
		INSERT INTO snapshots (id, captured_at, cache_ms, source, items_json)
		VALUES (?, ?, ?, ?, ?)
	`, id, snap.CapturedAt.Format(time.RFC3339Nano), snap.CacheMs, snap.Source, string(items))
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

// GetSnapshot returns one snapshot by id, or sql.ErrNoRows when absent.
func (d *DB) GetSnapshot(id string) (StoredSnapshot, error) {
	row := d.sql.QueryRow(`
		SELECT id, captured_at, cache_ms, source, items_json
		  FROM snapshots
		 WHERE id = ?
	`, id)
	return scanSnapshot(row)
}

// LatestSnapshot returns the most recently captured snapshot, or
// sql.ErrNoRows when none exist.
func (d *DB) LatestSnapshot() (StoredSnapshot, error) {
	row := d.sql.QueryRow(`
		SELECT id, captured_at, cache_ms, source, items_json
		  FROM snapshots
		 ORDER BY captured_at DESC
		 LIMIT 1
	`)
	return scanSnapshot(row)
}

// PruneSnapshots deletes all but the newest keep snapshots.
func (d *DB) PruneSnapshots(keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := d.sql.Exec(`
		DELETE FROM snapshots
		 WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY captured_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func scanSnapshot(row *sql.Row) (StoredSnapshot, error) {
	var (
		stored   StoredSnapshot
		captured string
		source   string
		items    string
	)
	if err := row.Scan(&stored.ID, &captured, &stored.Snapshot.CacheMs, &source, &items); err != nil {
		return StoredSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(items), &stored.Snapshot.Items); err != nil {
		return StoredSnapshot{}, fmt.Errorf("decode snapshot items: %w", err)
	}
	stored.Snapshot.Source = source
	stored.Snapshot.CapturedAt, _ = time.Parse(time.RFC3339Nano, captured)
	return stored, nil
}
