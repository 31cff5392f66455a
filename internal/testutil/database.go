// Package testutil provides SQLite-backed workspaces for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/clash-cost/internal/storage"
	"github.com/Veraticus/clash-cost/internal/testutil/fixtures"
	"github.com/Veraticus/clash-cost/internal/workspace"
)

// TestDB is a migrated in-memory database with a workspace opened on it.
type TestDB struct {
	Storage   *storage.SQLiteStorage
	Workspace *workspace.Workspace
	t         *testing.T
	Data      fixtures.Data
}

// SetupTestDB creates a new in-memory test database seeded with fixture.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, fixtures.FixtureCellRange)
func SetupTestDB(t *testing.T, fixture fixtures.Fixture) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Fixture: fixture})
}

// SetupTestDBWithBuilder creates a test database seeded by a builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b fixtures.Builder) fixtures.Builder {
//		return b.WithWork("tray", "EOM", "Cable tray", 40)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(fixtures.Builder) fixtures.Builder) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Configure: configure})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	Fixture     fixtures.Fixture
	Configure   func(fixtures.Builder) fixtures.Builder
	CustomSetup func(context.Context, *storage.SQLiteStorage) error
}

// SetupTestDBWithOptions creates a test database with custom options.
// CustomSetup runs before the workspace is opened, so it can write raw
// collections that the workspace then loads.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	ws, err := workspace.Open(ctx, store)
	if err != nil {
		t.Fatalf("failed to open workspace: %v", err)
	}

	builder := fixtures.NewBuilder(t)
	if opts.Fixture != nil {
		builder = builder.WithFixture(opts.Fixture)
	}
	if opts.Configure != nil {
		builder = opts.Configure(builder)
	}
	data, err := builder.Build(ctx, ws)
	if err != nil {
		t.Fatalf("failed to seed workspace: %v", err)
	}

	return &TestDB{
		Storage:   store,
		Workspace: ws,
		Data:      data,
		t:         t,
	}
}

// Reopen loads a fresh workspace from the same database.
func (db *TestDB) Reopen() *workspace.Workspace {
	db.t.Helper()
	ws, err := workspace.Open(context.Background(), db.Storage)
	if err != nil {
		db.t.Fatalf("failed to reopen workspace: %v", err)
	}
	return ws
}
