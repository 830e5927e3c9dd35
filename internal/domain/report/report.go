// Package report is a read-only projection over persisted orders. It
// aggregates what the order pipeline already guaranteed; it computes nothing
// the core is responsible for.
package report

import (
	"context"
	"fmt"
	"time"
)

// InvalidRangeError indicates unusable report parameters.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid report range: %s", e.Reason)
}

// Summary aggregates the non-cancelled orders of a period, in minor units.
type Summary struct {
	OrderCount    int64
	GrossSales    int64
	Discounts     int64
	NetSales      int64
	Tax           int64
	FinalSales    int64
	AvgOrderValue int64
}

// ItemRow is a line item attached to a report order row.
type ItemRow struct {
	ProductName string
	Quantity    int64
	UnitPrice   int64
	LineTotal   int64
}

// DiscountRow is an applied-discount audit entry attached to a report order row.
type DiscountRow struct {
	CodeSnapshot   string
	AmountDeducted int64
}

// OrderRow is one order on a report page.
type OrderRow struct {
	ID         string
	Status     string
	CreatedAt  time.Time
	Subtotal   int64
	Discount   int64
	Tax        int64
	FinalTotal int64
	Items      []ItemRow
	Discounts  []DiscountRow
}

// Page is a complete report response.
type Page struct {
	From       string
	To         string
	Summary    Summary
	Page       int
	PageSize   int
	Total      int64
	TotalPages int64
	Orders     []OrderRow
}

// Repository defines the read-only queries the projection runs. All queries
// exclude CANCELLED orders and cover [start, end).
type Repository interface {
	Summarize(ctx context.Context, start, end time.Time) (Summary, error)
	CountOrders(ctx context.Context, start, end time.Time) (int64, error)
	OrderPage(ctx context.Context, start, end time.Time, limit, offset int) ([]OrderRow, error)
	ItemsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]ItemRow, error)
	DiscountsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]DiscountRow, error)
}
