package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo reads and appends audit_log rows.
//
// Workflow mutations write their audit rows inside the item transaction
// (see internal/items); this repository serves the read path and any
// standalone appends.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) (Entry, error) {
	const q = `
INSERT INTO audit_log (item_id, item_name, action, detail, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	var itemID sql.NullInt64
	if e.ItemID != 0 {
		itemID = sql.NullInt64{Int64: e.ItemID, Valid: true}
	}
	if err := r.db.QueryRowContext(ctx, q, itemID, e.ItemName, e.Action, e.Detail, e.CreatedAt).Scan(&e.ID); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Entry, error) {
	const q = `
SELECT id, item_id, item_name, action, detail, created_at
FROM audit_log
ORDER BY created_at DESC, id DESC
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var itemID sql.NullInt64
		var itemName sql.NullString
		if err := rows.Scan(&e.ID, &itemID, &itemName, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		if itemID.Valid {
			e.ItemID = itemID.Int64
		}
		e.ItemName = itemName.String
		out = append(out, e)
	}
	return out, rows.Err()
}
