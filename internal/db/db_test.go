package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"xiv-profit/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenRunsMigrations(t *testing.T) {
	d := openTestDB(t)
	var version int
	if err := d.sql.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("schema_version: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defaults := Settings{HomeWorld: "Ravana", DataCenter: "Materia", Region: "Oceania", CacheWindowMs: 900000}

	// empty table returns defaults untouched
	if got := d.LoadSettings(defaults); got != defaults {
		t.Errorf("LoadSettings on empty db = %+v, want defaults", got)
	}

	saved := Settings{HomeWorld: "Cerberus", DataCenter: "Chaos", Region: "Europe", CacheWindowMs: 60000}
	if err := d.SaveSettings(saved); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if got := d.LoadSettings(defaults); got != saved {
		t.Errorf("LoadSettings = %+v, want %+v", got, saved)
	}
}

func TestPresetCRUD(t *testing.T) {
	d := openTestDB(t)

	p := Preset{
		Name:        "High Profit Alchemy",
		Description: "Expert alchemist recipes only",
		Tags:        []string{"alchemist", "expert"},
		Parameters:  engine.DefaultSearchParameters(),
	}
	p.Parameters.MinProfit = 50000

	if err := d.SavePreset(&p); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if p.ID == "" {
		t.Fatal("SavePreset did not assign an id")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := d.GetPreset(p.ID)
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if got.Name != p.Name || got.Parameters.MinProfit != 50000 {
		t.Errorf("GetPreset = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "alchemist" {
		t.Errorf("Tags = %v", got.Tags)
	}

	// update in place keeps the id and created time
	created := p.CreatedAt
	p.Name = "Renamed"
	if err := d.SavePreset(&p); err != nil {
		t.Fatalf("SavePreset update: %v", err)
	}
	got, err = d.GetPreset(p.ID)
	if err != nil {
		t.Fatalf("GetPreset after update: %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q after update", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on update: %v vs %v", got.CreatedAt, created)
	}

	deleted, err := d.DeletePreset(p.ID)
	if err != nil || !deleted {
		t.Fatalf("DeletePreset = %v, %v", deleted, err)
	}
	if _, err := d.GetPreset(p.ID); err != sql.ErrNoRows {
		t.Errorf("GetPreset after delete = %v, want sql.ErrNoRows", err)
	}
	deleted, err = d.DeletePreset(p.ID)
	if err != nil || deleted {
		t.Errorf("second delete = %v, %v, want false, nil", deleted, err)
	}
}

func TestSavePresetRequiresName(t *testing.T) {
	d := openTestDB(t)
	p := Preset{Parameters: engine.DefaultSearchParameters()}
	if err := d.SavePreset(&p); err == nil {
		t.Error("SavePreset should reject an empty name")
	}
}

func TestListPresetsOrdering(t *testing.T) {
	d := openTestDB(t)
	for _, p := range []Preset{
		{Name: "beta", Parameters: engine.DefaultSearchParameters()},
		{Name: "Alpha", Parameters: engine.DefaultSearchParameters()},
		{Name: "zulu default", IsDefault: true, Parameters: engine.DefaultSearchParameters()},
	} {
		if err := d.SavePreset(&p); err != nil {
			t.Fatalf("SavePreset %s: %v", p.Name, err)
		}
	}

	presets, err := d.ListPresets()
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	if len(presets) != 3 {
		t.Fatalf("len = %d, want 3", len(presets))
	}
	// defaults first, then case-insensitive name order
	if !presets[0].IsDefault {
		t.Errorf("first preset should be the default, got %q", presets[0].Name)
	}
	if presets[1].Name != "Alpha" || presets[2].Name != "beta" {
		t.Errorf("order = [%q %q]", presets[1].Name, presets[2].Name)
	}
}

func TestSeedPresetsOnlyWhenEmpty(t *testing.T) {
	d := openTestDB(t)
	seed := []Preset{{Name: "Starter", IsDefault: true, Parameters: engine.DefaultSearchParameters()}}

	if err := d.SeedPresets(seed); err != nil {
		t.Fatalf("SeedPresets: %v", err)
	}
	presets, _ := d.ListPresets()
	if len(presets) != 1 {
		t.Fatalf("len = %d, want 1", len(presets))
	}

	// user renames the preset; reseeding must not clobber it
	presets[0].Name = "Mine Now"
	if err := d.SavePreset(&presets[0]); err != nil {
		t.Fatal(err)
	}
	if err := d.SeedPresets(seed); err != nil {
		t.Fatalf("SeedPresets again: %v", err)
	}
	presets, _ = d.ListPresets()
	if len(presets) != 1 || presets[0].Name != "Mine Now" {
		t.Errorf("reseed clobbered presets: %+v", presets)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := openTestDB(t)

	median := 800.0
	snap := engine.MarketSnapshot{
		Items: []engine.RecipeMarket{{
			RecipeItem:   engine.RecipeItem{ID: 36218, Name: "Chondrite Ingot", Yields: 3},
			OutputRegion: engine.PriceStats{Median: &median},
			Complexity:   3,
		}},
		CapturedAt: time.Now().UTC().Truncate(time.Millisecond),
		CacheMs:    900000,
		Source:     engine.SourceLive,
	}

	id, err := d.SaveSnapshot(snap)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	stored, err := d.GetSnapshot(id)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if stored.ID != id || stored.Snapshot.Source != engine.SourceLive {
		t.Errorf("stored = %+v", stored)
	}
	if !stored.Snapshot.CapturedAt.Equal(snap.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", stored.Snapshot.CapturedAt, snap.CapturedAt)
	}
	item := stored.Snapshot.Items[0]
	if item.OutputRegion.Median == nil || *item.OutputRegion.Median != 800 {
		t.Errorf("Median = %v, want 800", item.OutputRegion.Median)
	}
}

func TestLatestSnapshot(t *testing.T) {
	d := openTestDB(t)

	if _, err := d.LatestSnapshot(); err != sql.ErrNoRows {
		t.Errorf("LatestSnapshot on empty db = %v, want sql.ErrNoRows", err)
	}

	old := engine.MarketSnapshot{CapturedAt: time.Now().UTC().Add(-time.Hour), CacheMs: 1, Source: engine.SourceLive}
	recent := engine.MarketSnapshot{CapturedAt: time.Now().UTC(), CacheMs: 1, Source: engine.SourceLive}
	if _, err := d.SaveSnapshot(old); err != nil {
		t.Fatal(err)
	}
	recentID, err := d.SaveSnapshot(recent)
	if err != nil {
		t.Fatal(err)
	}

	latest, err := d.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.ID != recentID {
		t.Errorf("latest = %s, want %s", latest.ID, recentID)
	}
}

func TestPruneSnapshots(t *testing.T) {
	d := openTestDB(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		snap := engine.MarketSnapshot{CapturedAt: base.Add(time.Duration(i) * time.Minute), CacheMs: 1, Source: engine.SourceLive}
		if _, err := d.SaveSnapshot(snap); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.PruneSnapshots(2); err != nil {
		t.Fatalf("PruneSnapshots: %v", err)
	}
	var count int
	d.sql.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	// survivors are the newest two
	latest, err := d.LatestSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if !latest.Snapshot.CapturedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("latest CapturedAt = %v", latest.Snapshot.CapturedAt)
	}
}
