package database

import (
	"os"
	"path/filepath"
	"testing"

	"upiqr/internal/platform/config"
)

func TestMigrate(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{URL: ":memory:", MaxConnections: 1})
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "002_items.sql"), []byte(`ALTER TABLE things ADD COLUMN label TEXT;`), 0644)
	os.WriteFile(filepath.Join(dir, "001_things.sql"), []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`), 0644)
	os.WriteFile(filepath.Join(dir, "README.md"), []byte("not sql"), 0644)

	applied, err := Migrate(db, dir)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(applied) != 2 || applied[0] != "001_things.sql" {
		t.Errorf("applied = %v", applied)
	}

	if _, err := db.Exec("INSERT INTO things (id, label) VALUES ('a', 'b')"); err != nil {
		t.Errorf("schema not applied: %v", err)
	}

	again, err := Migrate(db, dir)
	if err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("migrations re-applied: %v", again)
	}
}

func TestMigrate_RepoSchema(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{URL: ":memory:", MaxConnections: 1})
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if _, err := Migrate(db, "../../../migrations"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, table := range []string{"payment_links", "scans", "daily_scan_stats"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n); err != nil || n != 1 {
			t.Errorf("table %s missing (%v)", table, err)
		}
	}
}

func TestMigrate_EmptyDir(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{URL: ":memory:", MaxConnections: 1})
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if _, err := Migrate(db, t.TempDir()); err == nil {
		t.Error("Expected error for empty migrations dir")
	}
}
