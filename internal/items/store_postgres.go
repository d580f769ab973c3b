package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"disposal-platform/internal/audit"
	"disposal-platform/internal/catalog"
	"disposal-platform/pkg/utils"
)

// PostgresStore persists items and their audit trail.
//
// Assumed tables (see internal/storage migrations):
// - items
// - audit_log (immutable append-only)
//
// Each mutating method runs inside one transaction; the target row is
// locked with SELECT ... FOR UPDATE so concurrent writes to the same item
// are serialized.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const itemColumns = `id, name, quantity, facility_age, disposal_method, cost, env_score, risk_score, expected_benefit, net_effect, mitigation_note, status, created_at`

func (s *PostgresStore) Insert(ctx context.Context, it Item, entry audit.Entry) (Item, error) {
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO items (name, quantity, facility_age, disposal_method, cost, env_score, risk_score, expected_benefit, net_effect, mitigation_note, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`
		if err := tx.QueryRowContext(ctx, q,
			it.Name,
			it.Quantity,
			it.FacilityAge,
			methodOrNull(it.Method),
			it.Cost,
			it.EnvScore,
			it.RiskScore,
			it.ExpectedBenefit,
			it.NetEffect,
			it.MitigationNote,
			it.Status,
			it.CreatedAt,
		).Scan(&it.ID); err != nil {
			return err
		}
		entry.ItemID = it.ID
		return insertAuditTx(ctx, tx, entry)
	})
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]Item, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + itemColumns + ` FROM items WHERE 1=1`)
	args := make([]any, 0, 3)

	if f.NameContains != "" {
		args = append(args, "%"+f.NameContains+"%")
		fmt.Fprintf(&b, " AND name ILIKE $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		fmt.Fprintf(&b, " AND status = $%d", len(args))
	}
	if f.Method != "" {
		args = append(args, f.Method)
		fmt.Fprintf(&b, " AND disposal_method = $%d", len(args))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Mutate(ctx context.Context, id int64, fn MutateFunc) (Item, error) {
	var out Item
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		it, err := lockItem(ctx, tx, id)
		if err != nil {
			return err
		}
		entry, err := fn(&it)
		if err != nil {
			return err
		}
		if err := updateItemTx(ctx, tx, it); err != nil {
			return err
		}
		if err := insertAuditTx(ctx, tx, entry); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return out, nil
}

func (s *PostgresStore) MutateUnplanned(ctx context.Context, fn func(it *Item) error, summary func(updated int) audit.Entry) (int, error) {
	var updated int
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		q := `SELECT ` + itemColumns + ` FROM items WHERE disposal_method IS NULL ORDER BY id FOR UPDATE`
		rows, err := tx.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		batch := make([]Item, 0)
		for rows.Next() {
			it, err := scanItem(rows)
			if err != nil {
				rows.Close()
				return err
			}
			batch = append(batch, it)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
			if err := updateItemTx(ctx, tx, batch[i]); err != nil {
				return err
			}
		}
		updated = len(batch)
		if updated == 0 {
			return nil
		}
		return insertAuditTx(ctx, tx, summary(updated))
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64, entry func(it Item) audit.Entry) error {
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		it, err := lockItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := insertAuditTx(ctx, tx, entry(it)); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
		return err
	})
}

func lockItem(ctx context.Context, tx *sql.Tx, id int64) (Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	it, err := scanItem(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func updateItemTx(ctx context.Context, tx *sql.Tx, it Item) error {
	const q = `
UPDATE items
SET name = $1, quantity = $2, facility_age = $3, disposal_method = $4, cost = $5,
    env_score = $6, risk_score = $7, expected_benefit = $8, net_effect = $9,
    mitigation_note = $10, status = $11
WHERE id = $12
`
	_, err := tx.ExecContext(ctx, q,
		it.Name,
		it.Quantity,
		it.FacilityAge,
		methodOrNull(it.Method),
		it.Cost,
		it.EnvScore,
		it.RiskScore,
		it.ExpectedBenefit,
		it.NetEffect,
		it.MitigationNote,
		it.Status,
		it.ID,
	)
	return err
}

func insertAuditTx(ctx context.Context, tx *sql.Tx, e audit.Entry) error {
	const q = `
INSERT INTO audit_log (item_id, item_name, action, detail, created_at)
VALUES ($1,$2,$3,$4,$5)
`
	var itemID sql.NullInt64
	if e.ItemID != 0 {
		itemID = sql.NullInt64{Int64: e.ItemID, Valid: true}
	}
	_, err := tx.ExecContext(ctx, q, itemID, e.ItemName, e.Action, e.Detail, e.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (Item, error) {
	var it Item
	var method sql.NullString
	if err := r.Scan(
		&it.ID,
		&it.Name,
		&it.Quantity,
		&it.FacilityAge,
		&method,
		&it.Cost,
		&it.EnvScore,
		&it.RiskScore,
		&it.ExpectedBenefit,
		&it.NetEffect,
		&it.MitigationNote,
		&it.Status,
		&it.CreatedAt,
	); err != nil {
		return Item{}, err
	}
	if method.Valid {
		it.Method = catalog.Method(method.String)
	}
	return it, nil
}

func methodOrNull(m catalog.Method) sql.NullString {
	if m == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(m), Valid: true}
}
