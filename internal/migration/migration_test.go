package migration

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyMigrations_AppliesInOrder(t *testing.T) {
	db := openTestDB(t)

	migFS := fstest.MapFS{
		"002_add_column.sql": {Data: []byte("ALTER TABLE things ADD COLUMN note TEXT;")},
		"001_init.sql":       {Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY);")},
	}

	runner := NewRunner(db, migFS)
	var applied []string
	n, err := runner.ApplyMigrations(func(msg string) { applied = append(applied, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if n != 2 {
		t.Errorf("applied %d migrations, want 2", n)
	}
	if len(applied) != 2 || applied[0] != "Applied migration 1: init" {
		t.Errorf("report lines = %v", applied)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	// The migrated schema is usable.
	if _, err := db.Exec("INSERT INTO things (id, note) VALUES ('a', 'b')"); err != nil {
		t.Errorf("insert into migrated table failed: %v", err)
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)

	migFS := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY);")},
	}

	runner := NewRunner(db, migFS)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("first ApplyMigrations failed: %v", err)
	}

	n, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if n != 0 {
		t.Errorf("applied %d migrations on rerun, want 0", n)
	}
}

func TestReadMigrationFiles_RejectsBadNames(t *testing.T) {
	db := openTestDB(t)

	runner := NewRunner(db, fstest.MapFS{
		"init.sql": {Data: []byte("SELECT 1;")},
	})
	if _, err := runner.ReadMigrationFiles(); err == nil {
		t.Error("expected an error for a filename without a version prefix")
	}

	runner = NewRunner(db, fstest.MapFS{
		"000_bad.sql": {Data: []byte("SELECT 1;")},
	})
	if _, err := runner.ReadMigrationFiles(); err == nil {
		t.Error("expected an error for version 0")
	}
}

func TestValidateVersion(t *testing.T) {
	db := openTestDB(t)

	migFS := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY);")},
	}
	runner := NewRunner(db, migFS)

	// Fresh database is behind.
	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected an out-of-date error before migrating")
	}

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion failed after migrating: %v", err)
	}

	// A database from a newer binary is rejected too.
	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected an error for a too-new schema version")
	}
}
