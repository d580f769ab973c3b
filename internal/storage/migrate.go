package storage

import (
	"context"
	"database/sql"
	"fmt"

	"disposal-platform/pkg/utils"
)

// Migration is one versioned schema step. Statements must stay additive
// (new tables, new nullable/defaulted columns, indexes) so existing rows
// survive upgrades.
type Migration struct {
	Version int
	Name    string
	Stmts   []string
}

// Migrations is the ordered schema history. Append only; never edit or
// reorder a released entry.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create items",
		Stmts: []string{`
CREATE TABLE IF NOT EXISTS items (
    id               BIGSERIAL PRIMARY KEY,
    name             TEXT NOT NULL,
    quantity         INTEGER NOT NULL DEFAULT 1,
    facility_age     INTEGER NOT NULL DEFAULT 0,
    disposal_method  TEXT,
    cost             BIGINT NOT NULL DEFAULT 0,
    env_score        INTEGER NOT NULL DEFAULT 0,
    risk_score       INTEGER NOT NULL DEFAULT 0,
    expected_benefit BIGINT NOT NULL DEFAULT 0,
    net_effect       BIGINT NOT NULL DEFAULT 0,
    mitigation_note  TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'pending',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)
`},
	},
	{
		Version: 2,
		Name:    "create audit_log",
		Stmts: []string{`
CREATE TABLE IF NOT EXISTS audit_log (
    id         BIGSERIAL PRIMARY KEY,
    item_id    BIGINT,
    item_name  TEXT,
    action     TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`},
	},
	{
		Version: 3,
		Name:    "listing indexes",
		Stmts: []string{
			`CREATE INDEX IF NOT EXISTS items_created_at_idx ON items (created_at DESC, id DESC)`,
			`CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at DESC, id DESC)`,
		},
	},
}

// migrationLockID keys the advisory lock serializing concurrent
// deployments against the same database.
const migrationLockID = 762040 // arbitrary, stable

// Apply runs every pending migration, each in its own transaction, and is
// idempotent: already-applied versions are skipped.
func Apply(ctx context.Context, db *sql.DB) error {
	const bootstrap = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`
	if _, err := db.ExecContext(ctx, bootstrap); err != nil {
		return fmt.Errorf("migrations bootstrap failed: %w", err)
	}

	for _, m := range Migrations {
		err := utils.WithTx(ctx, db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
				return err
			}

			var applied bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
			).Scan(&applied); err != nil {
				return err
			}
			if applied {
				return nil
			}

			for _, stmt := range m.Stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
	}
	return nil
}
