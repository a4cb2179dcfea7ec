package db

import (
	"strconv"
)

// Settings are the per-install market preferences the UI can change at runtime.
type Settings struct {
	HomeWorld     string `json:"homeWorld"`
	DataCenter    string `json:"dataCenter"`
	Region        string `json:"region"`
	CacheWindowMs int64  `json:"cacheWindowMs"`
}

// LoadSettings reads settings from SQLite, layered over the given defaults.
func (d *DB) LoadSettings(defaults Settings) Settings {
	s := defaults

	rows, err := d.sql.Query("SELECT key, value FROM settings")
	if err != nil {
		return s
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if v, ok := m["home_world"]; ok {
		s.HomeWorld = v
	}
	if v, ok := m["data_center"]; ok {
		s.DataCenter = v
	}
	if v, ok := m["region"]; ok {
		s.Region = v
	}
	if v, ok := m["cache_window_ms"]; ok {
		s.CacheWindowMs, _ = strconv.ParseInt(v, 10, 64)
	}
	return s
}

// SaveSettings upserts all settings fields.
func (d *DB) SaveSettings(s Settings) error {
	pairs := map[string]string{
		"home_world":      s.HomeWorld,
		"data_center":     s.DataCenter,
		"region":          s.Region,
		"cache_window_ms": strconv.FormatInt(s.CacheWindowMs, 10),
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
