package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/report"
)

const (
	reportSummarySQL = `SELECT
		COUNT(*),
		COALESCE(SUM(subtotal_int), 0),
		COALESCE(SUM(discount_int), 0),
		COALESCE(SUM(tax_int), 0),
		COALESCE(SUM(final_total_int), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'CANCELLED'`

	reportCountSQL = `SELECT COUNT(*) FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'CANCELLED'`

	reportOrderPageSQL = `SELECT id, status, created_at,
		subtotal_int, discount_int, tax_int, final_total_int
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'CANCELLED'
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	reportItemsSQL = `SELECT order_id, product_name_snapshot, quantity,
		unit_price_snapshot_int, line_total_int
		FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id`

	reportDiscountsSQL = `SELECT order_id, code_snapshot, amount_deducted_int
		FROM applied_discounts WHERE order_id = ANY($1::uuid[])`
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository backed by PostgreSQL. All
// methods are read-only and safe to run concurrently on the shared pool.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Summarize aggregates non-cancelled orders in [start, end). NetSales and
// AvgOrderValue are derived by the caller.
func (r *ReportRepository) Summarize(ctx context.Context, start, end time.Time) (report.Summary, error) {
	var s report.Summary
	err := r.pool.QueryRow(ctx, reportSummarySQL, start, end).Scan(
		&s.OrderCount, &s.GrossSales, &s.Discounts, &s.Tax, &s.FinalSales,
	)
	if err != nil {
		return report.Summary{}, fmt.Errorf("summarizing orders: %w", err)
	}
	return s, nil
}

// CountOrders returns the number of non-cancelled orders in [start, end).
func (r *ReportRepository) CountOrders(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, reportCountSQL, start, end).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// OrderPage returns one page of non-cancelled orders, newest first, without
// relations attached.
func (r *ReportRepository) OrderPage(ctx context.Context, start, end time.Time, limit, offset int) ([]report.OrderRow, error) {
	rows, err := r.pool.Query(ctx, reportOrderPageSQL, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("loading report page: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.OrderRow, error) {
		var o report.OrderRow
		err := row.Scan(
			&o.ID, &o.Status, &o.CreatedAt,
			&o.Subtotal, &o.Discount, &o.Tax, &o.FinalTotal,
		)
		return o, err
	})
}

// ItemsByOrderIDs batch-loads line items for the given orders.
func (r *ReportRepository) ItemsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]report.ItemRow, error) {
	rows, err := r.pool.Query(ctx, reportItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("loading report items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]report.ItemRow, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			item    report.ItemRow
		)
		if err := rows.Scan(&orderID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("scanning report item: %w", err)
		}
		out[orderID] = append(out[orderID], item)
	}
	return out, rows.Err()
}

// DiscountsByOrderIDs batch-loads applied-discount audit rows for the given orders.
func (r *ReportRepository) DiscountsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]report.DiscountRow, error) {
	rows, err := r.pool.Query(ctx, reportDiscountsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("loading report discounts: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]report.DiscountRow, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			d       report.DiscountRow
		)
		if err := rows.Scan(&orderID, &d.CodeSnapshot, &d.AmountDeducted); err != nil {
			return nil, fmt.Errorf("scanning report discount: %w", err)
		}
		out[orderID] = append(out[orderID], d)
	}
	return out, rows.Err()
}
