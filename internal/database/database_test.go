package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{SQLite, "SELECT * FROM bills WHERE id = ? AND user_id = ?", "SELECT * FROM bills WHERE id = ? AND user_id = ?"},
		{Postgres, "SELECT * FROM bills WHERE id = ? AND user_id = ?", "SELECT * FROM bills WHERE id = $1 AND user_id = $2"},
		{Postgres, "SELECT 1", "SELECT 1"},
		{Postgres, "UPDATE bills SET name = ?, notes = ? WHERE id = ?", "UPDATE bills SET name = $1, notes = $2 WHERE id = $3"},
	}
	for _, tt := range tests {
		if got := rebind(tt.dialect, tt.in); got != tt.want {
			t.Errorf("rebind(%v, %q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	tests := map[string]Dialect{
		"postgres://u:p@localhost/bills":   Postgres,
		"postgresql://u:p@localhost/bills": Postgres,
		"./bills.db":                       SQLite,
		"/var/lib/bills/bills.db":          SQLite,
	}
	for dsn, want := range tests {
		if got := dialectFor(dsn); got != want {
			t.Errorf("dialectFor(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "nested", "bills.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}
