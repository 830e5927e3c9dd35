package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
)

const (
	discountColumns = `id, code, type, value_int, is_active, created_at, updated_at`

	findDiscountByCodeSQL = `SELECT ` + discountColumns + `
		FROM discounts WHERE code = $1`

	insertDiscountSQL = `INSERT INTO discounts (id, code, type, value_int, is_active)
		VALUES ($1, $2, $3, $4, $5)`

	upsertDiscountSQL = `INSERT INTO discounts (id, code, type, value_int, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE
		SET type = EXCLUDED.type,
			value_int = EXCLUDED.value_int,
			is_active = EXCLUDED.is_active,
			updated_at = now()`

	countDiscountsSQL = `SELECT COUNT(*) FROM discounts`
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByNormalizedCode looks up a rule by its normalized (uppercase) code.
// Codes are stored normalized, so the lookup is a plain equality match.
func (r *DiscountRepository) FindByNormalizedCode(ctx context.Context, code string) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx, findDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanDiscountRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &rule, nil
}

// Create inserts a new rule. A duplicate code surfaces as ErrDuplicateCode;
// uniqueness is enforced by the storage layer, not the application.
func (r *DiscountRepository) Create(ctx context.Context, rule *discount.Rule) error {
	_, err := r.pool.Exec(ctx, insertDiscountSQL,
		rule.ID, rule.Code, string(rule.Type), rule.Value, rule.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return discount.ErrDuplicateCode
		}
		return fmt.Errorf("creating discount %q: %w", rule.Code, err)
	}
	return nil
}

// Upsert inserts a rule or, when the code already exists, replaces its type,
// value, and active flag. Used by bulk ingestion.
func (r *DiscountRepository) Upsert(ctx context.Context, rule *discount.Rule) error {
	_, err := r.pool.Exec(ctx, upsertDiscountSQL,
		rule.ID, rule.Code, string(rule.Type), rule.Value, rule.Active,
	)
	if err != nil {
		return fmt.Errorf("upserting discount %q: %w", rule.Code, err)
	}
	return nil
}

// Count returns the total number of discount rules.
func (r *DiscountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countDiscountsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting discounts: %w", err)
	}
	return n, nil
}

func scanDiscountRule(row pgx.CollectableRow) (discount.Rule, error) {
	var (
		rule discount.Rule
		typ  string
	)
	err := row.Scan(
		&rule.ID, &rule.Code, &typ, &rule.Value, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
	)
	rule.Type = discount.Type(typ)
	return rule, err
}
