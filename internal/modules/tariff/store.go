// README: Tariff store backed by PostgreSQL.
package tariff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// listRowsQuery keeps insertion order; there is no secondary sort key.
const listRowsQuery = `
        SELECT label, effective_date, coefficient::text, fixed_fee::text
        FROM tariff_entries
        ORDER BY id`

// ListRows reads every stored row in insertion order. Amounts are read as
// text to keep full precision.
func (s *Store) ListRows(ctx context.Context) ([]Row, error) {
	rows, err := s.db.Query(ctx, listRowsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var label, effective, coef, fee string
		if err := rows.Scan(&label, &effective, &coef, &fee); err != nil {
			return nil, err
		}
		c, err := decimal.NewFromString(coef)
		if err != nil {
			return nil, fmt.Errorf("%w: coefficient of %q: %v", ErrMalformedTable, label, err)
		}
		f, err := decimal.NewFromString(fee)
		if err != nil {
			return nil, fmt.Errorf("%w: fixed fee of %q: %v", ErrMalformedTable, label, err)
		}
		out = append(out, Row{Label: label, EffectiveDate: effective, Coefficient: c, FixedFee: f})
	}
	return out, rows.Err()
}

// SeedDefaults inserts rows that are not stored yet. Existing labels are left untouched.
func (s *Store) SeedDefaults(ctx context.Context, rows []Row) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for _, r := range rows {
		tag, err := tx.Exec(ctx, `
            INSERT INTO tariff_entries (label, effective_date, coefficient, fixed_fee)
            VALUES ($1, $2, $3::numeric, $4::numeric)
            ON CONFLICT (label) DO NOTHING`,
			r.Label, r.EffectiveDate, r.Coefficient.String(), r.FixedFee.String(),
		)
		if err != nil {
			return inserted, fmt.Errorf("seed %q: %w", r.Label, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// Load builds the table from the configured source. store may be nil for the
// embedded source.
func Load(ctx context.Context, source string, store *Store) (*Table, error) {
	switch source {
	case "", SourceEmbedded:
		return NewTable(DefaultRows())
	case SourcePostgres:
		if store == nil {
			return nil, errors.New("tariff: postgres source requires a store")
		}
		rows, err := store.ListRows(ctx)
		if err != nil {
			return nil, fmt.Errorf("tariff: list rows: %w", err)
		}
		return NewTable(rows)
	default:
		return nil, fmt.Errorf("tariff: unknown source %q", source)
	}
}
