package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestCurrentVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(nil), SQLite)

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 on a fresh database, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if version, _ := runner.CurrentVersion(); version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestMigrationsSortedAndValidated(t *testing.T) {
	db := setupTestDB(t)

	runner := NewRunner(db, migrationFS(map[string]string{
		"002_second.sql": "SELECT 2;",
		"001_first.sql":  "SELECT 1;",
		"README.md":      "not a migration",
	}), SQLite)
	migrations, err := runner.Migrations()
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	if len(migrations) != 2 || migrations[0].Name != "first" || migrations[1].Version != 2 {
		t.Errorf("unexpected migrations: %+v", migrations)
	}

	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"duplicate", map[string]string{"001_a.sql": "", "001_b.sql": ""}, "duplicate migration version"},
		{"no underscore", map[string]string{"001.sql": ""}, "invalid migration filename"},
		{"bad number", map[string]string{"abc_x.sql": ""}, "invalid version number"},
		{"zero", map[string]string{"000_x.sql": ""}, "at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(db, migrationFS(tt.files), SQLite).Migrations()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	db := setupTestDB(t)
	files := map[string]string{
		"001_tasks.sql": "CREATE TABLE tasks (id TEXT PRIMARY KEY);",
		"002_title.sql": "ALTER TABLE tasks ADD COLUMN title TEXT NOT NULL DEFAULT '';",
	}
	runner := NewRunner(db, migrationFS(files), SQLite)

	var messages []string
	applied, err := runner.Apply(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 migrations applied, got %d", applied)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}
	if _, err := db.Exec("INSERT INTO tasks (id, title) VALUES ('a', 'b')"); err != nil {
		t.Errorf("schema not migrated: %v", err)
	}

	applied, err = runner.Apply(nil)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected no pending migrations, got %d", applied)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_ok.sql":  "CREATE TABLE ok (id INTEGER);",
		"002_bad.sql": "CREATE TABLE broken (;",
	}), SQLite)

	applied, err := runner.Apply(nil)
	if err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 applied migration, got %d", applied)
	}
	if version, _ := runner.CurrentVersion(); version != 1 {
		t.Errorf("expected version 1 after the failure, got %d", version)
	}
}

func TestValidateRejectsNewerSchema(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{"001_a.sql": "SELECT 1;"}), SQLite)
	if err := runner.SetVersion(3); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.Validate(); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected newer-schema error, got %v", err)
	}
	if _, err := runner.Apply(nil); err == nil {
		t.Error("Apply should refuse a newer schema")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{SQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{Postgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{Postgres, "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{Postgres, "DELETE FROM t", "DELETE FROM t"},
	}
	for _, tt := range tests {
		if got := tt.dialect.Rebind(tt.in); got != tt.want {
			t.Errorf("%s Rebind(%q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}
