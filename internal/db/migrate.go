package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	version int
	name    string
	sql     string
}

// Column types are chosen so the same DDL runs on Postgres and SQLite.
var migrations = []migration{
	{
		version: 1,
		name:    "diet_profiles_and_logs",
		sql: `
CREATE TABLE IF NOT EXISTS diet_profiles (
    user_key TEXT PRIMARY KEY,
    goal TEXT NOT NULL,
    weight_kg DOUBLE PRECISION NOT NULL CHECK (weight_kg > 0),
    height_cm DOUBLE PRECISION NOT NULL CHECK (height_cm > 0),
    height_text TEXT NOT NULL,
    protein_target INTEGER NOT NULL CHECK (protein_target > 0),
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_logs (
    user_key TEXT NOT NULL,
    date_key TEXT NOT NULL,
    meals TEXT NOT NULL,
    protein_goal INTEGER NOT NULL,
    hydration_liters DOUBLE PRECISION NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (user_key, date_key)
);
`,
	},
	{
		version: 2,
		name:    "protein_entries",
		sql: `
CREATE TABLE IF NOT EXISTS protein_entries (
    date_key TEXT PRIMARY KEY,
    protein_goal DOUBLE PRECISION NOT NULL,
    protein_consumed DOUBLE PRECISION NOT NULL,
    updated_at TEXT NOT NULL
);
`,
	},
	{
		version: 3,
		name:    "daily_log_revision",
		sql:     `ALTER TABLE daily_logs ADD COLUMN revision INTEGER NOT NULL DEFAULT 1;`,
	},
}

// RunMigrations applies every migration not yet recorded in
// schema_migrations, each in its own transaction.
func RunMigrations(db *sqlx.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []int
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`),
			m.version, m.name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}

// CurrentVersion reports the highest applied migration.
func CurrentVersion(db *sqlx.DB) (int, error) {
	var v int
	if err := db.Get(&v, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, err
	}
	return v, nil
}

// LatestVersion is the version RunMigrations brings a database to.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}
