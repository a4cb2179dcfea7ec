package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"xiv-profit/internal/engine"
	"xiv-profit/internal/logger"
)

// Preset is a saved search: a name plus the full parameter set.
type Preset struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Tags        []string                `json:"tags,omitempty"`
	IsDefault   bool                    `json:"isDefault"`
	Parameters  engine.SearchParameters `json:"parameters"`
	SnapshotID  string                  `json:"snapshotId,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// ListPresets returns all presets, default presets first, then by name.
func (d *DB) ListPresets() ([]Preset, error) {
	rows, err := d.sql.Query(`
		SELECT id, name, description, tags, is_default, params_json, snapshot_id, created_at, updated_at
		  FROM presets
		 ORDER BY is_default DESC, name COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	presets := []Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// GetPreset returns one preset by id, or sql.ErrNoRows when absent.
func (d *DB) GetPreset(id string) (Preset, error) {
	row := d.sql.QueryRow(`
		SELECT id, name, description, tags, is_default, params_json, snapshot_id, created_at, updated_at
		  FROM presets
		 WHERE id = ?
	`, id)
	return scanPreset(row)
}

// SavePreset inserts or updates a preset. A preset without an id gets one.
func (d *DB) SavePreset(p *Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode preset tags: %w", err)
	}
	params, err := json.Marshal(p.Parameters)
	if err != nil {
		return fmt.Errorf("encode preset parameters: %w", err)
	}

	_, err = d.sql.Exec(`
		INSERT INTO presets (id, name, description, tags, is_default, params_json, snapshot_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			description = excluded.description,
			tags        = excluded.tags,
			is_default  = excluded.is_default,
			params_json = excluded.params_json,
			snapshot_id = excluded.snapshot_id,
			updated_at  = excluded.updated_at
	`, p.ID, p.Name, p.Description, string(tags), boolToInt(p.IsDefault), string(params),
		nullable(p.SnapshotID), p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save preset %s: %w", p.Name, err)
	}
	return nil
}

// DeletePreset removes a preset. Returns false when no row matched.
func (d *DB) DeletePreset(id string) (bool, error) {
	res, err := d.sql.Exec("DELETE FROM presets WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete preset: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SeedPresets inserts the given presets only when the table is empty, so
// user-modified presets survive restarts.
func (d *DB) SeedPresets(presets []Preset) error {
	var count int
	d.sql.QueryRow("SELECT COUNT(*) FROM presets").Scan(&count)
	if count > 0 {
		return nil
	}
	for i := range presets {
		if err := d.SavePreset(&presets[i]); err != nil {
			return err
		}
	}
	logger.Info("DB", fmt.Sprintf("Seeded %d presets", len(presets)))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPreset(row rowScanner) (Preset, error) {
	var (
		p          Preset
		tags       string
		isDefault  int
		params     string
		snapshotID sql.NullString
		created    string
		updated    string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &tags, &isDefault, &params, &snapshotID, &created, &updated); err != nil {
		return Preset{}, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Preset{}, fmt.Errorf("decode preset tags: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &p.Parameters); err != nil {
		return Preset{}, fmt.Errorf("decode preset parameters: %w", err)
	}
	p.IsDefault = isDefault != 0
	p.SnapshotID = snapshotID.String
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
