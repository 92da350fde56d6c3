package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/msomdec/village-rental/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO client_storage (namespace, key, value) VALUES (?, ?, ?)",
		"client-1", "token", "abc",
	)
	if err != nil {
		t.Fatalf("insert into client_storage: %v", err)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 migration record, got %d", count)
	}
}

func TestRunFS_AppliesInOrderAndSkipsApplied(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_b.sql":  {Data: []byte("INSERT INTO a (v) VALUES ('second');")},
		"001_a.sql":  {Data: []byte("CREATE TABLE a (v TEXT);")},
		"README.txt": {Data: []byte("ignored")},
	}

	n, err := migrations.RunFS(ctx, db, fsys)
	if err != nil {
		t.Fatalf("RunFS: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 applied, got %d", n)
	}

	n, err = migrations.RunFS(ctx, db, fsys)
	if err != nil {
		t.Fatalf("second RunFS: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 applied on rerun, got %d", n)
	}
}

func TestRunFS_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE broken (")},
	}

	if _, err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected error for invalid SQL")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no recorded migrations, got %d", count)
	}
}
