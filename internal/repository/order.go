package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/order"
)

const (
	orderColumns = `id, status, subtotal_int, discount_int, tax_int, final_total_int, created_at, updated_at`

	insertOrderSQL = `INSERT INTO orders (id, status, subtotal_int, discount_int, tax_int, final_total_int)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertOrderItemSQL = `INSERT INTO order_items
		(id, order_id, product_id, quantity, unit_price_snapshot_int, product_name_snapshot, line_total_int)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertAppliedDiscountSQL = `INSERT INTO applied_discounts
		(id, order_id, discount_id, code_snapshot, amount_deducted_int)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT id, order_id, product_id, quantity,
		unit_price_snapshot_int, product_name_snapshot, line_total_int
		FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id`

	listAppliedDiscountsSQL = `SELECT id, order_id, discount_id, code_snapshot, amount_deducted_int
		FROM applied_discounts WHERE order_id = ANY($1::uuid[])`

	// Conditional status update: the WHERE clause carries the optimistic
	// guard against concurrent transitions on the same order.
	updateOrderStatusSQL = `UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header, all line items, and the optional
// applied-discount row inside one transaction. Any failure rolls the whole
// unit back; no partial order is ever visible.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertOrderSQL,
		o.ID, string(o.Status), o.Subtotal, o.Discount, o.Tax, o.FinalTotal,
	); err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(insertOrderItemSQL,
			item.ID, item.OrderID, item.ProductID, item.Quantity,
			item.UnitPriceSnapshot, item.ProductNameSnapshot, item.LineTotal,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting order items for %q: %w", o.ID, err)
	}

	if ad := o.AppliedDiscount; ad != nil {
		if _, err := tx.Exec(ctx, insertAppliedDiscountSQL,
			ad.ID, ad.OrderID, ad.DiscountID, ad.CodeSnapshot, ad.AmountDeducted,
		); err != nil {
			return fmt.Errorf("inserting applied discount for %q: %w", o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns the order with its line items and applied discount.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.attachRelations(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all orders, newest first, with relations populated.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachRelations(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus performs the compare-and-swap status transition. Zero rows
// affected means either the order vanished or the status moved underneath
// us; the two cases are distinguished with one extra existence query.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking order %q: %w", id, err)
	}
	if !exists {
		return order.ErrNotFound
	}
	return order.ErrStatusConflict
}

// attachRelations batch-loads line items and applied discounts for the given
// orders and attaches them in place.
func (r *OrderRepository) attachRelations(ctx context.Context, orders []*order.Order) error {
	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	itemRows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	items, err := pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	for _, item := range items {
		o := byID[item.OrderID]
		o.Items = append(o.Items, item)
	}

	adRows, err := r.pool.Query(ctx, listAppliedDiscountsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading applied discounts: %w", err)
	}
	ads, err := pgx.CollectRows(adRows, scanAppliedDiscount)
	if err != nil {
		return fmt.Errorf("loading applied discounts: %w", err)
	}
	for i := range ads {
		o := byID[ads[i].OrderID]
		o.AppliedDiscount = &ads[i]
	}

	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &status, &o.Subtotal, &o.Discount, &o.Tax, &o.FinalTotal,
		&o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.LineItem, error) {
	var item order.LineItem
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
		&item.UnitPriceSnapshot, &item.ProductNameSnapshot, &item.LineTotal,
	)
	return item, err
}

func scanAppliedDiscount(row pgx.CollectableRow) (order.AppliedDiscount, error) {
	var ad order.AppliedDiscount
	err := row.Scan(
		&ad.ID, &ad.OrderID, &ad.DiscountID, &ad.CodeSnapshot, &ad.AmountDeducted,
	)
	return ad, err
}
