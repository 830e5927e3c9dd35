package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Status is the fulfillment state of an order.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusConfirmed Status = "CONFIRMED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// nextStatus is the strict linear workflow: each state has exactly one
// successor. COMPLETED and CANCELLED are terminal and have no entry.
var nextStatus = map[Status]Status{
	StatusOpen:      StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusCompleted,
}

// Next returns the single deterministic successor of s. The second return
// value is false when s is terminal.
func Next(s Status) (Status, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Sentinel errors for order operations.
var (
	ErrEmptyItems = errors.New("order must have at least 1 item")
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidPricing guards the defensive taxBase >= 0 check. The
	// evaluator's clamp makes it unreachable in practice.
	ErrInvalidPricing = errors.New("discount exceeds subtotal")
	// ErrStatusConflict is returned when a status transition loses the race
	// against a concurrent transition on the same order.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// InvalidQuantityError indicates a line item with quantity below 1.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// ProductsUnavailableError indicates that one or more requested products are
// missing or inactive. The check is all-or-nothing: a single unavailable
// product fails the whole request.
type ProductsUnavailableError struct {
	ProductIDs []string
}

func (e *ProductsUnavailableError) Error() string {
	return fmt.Sprintf("products unavailable: %v", e.ProductIDs)
}

// InvalidTransitionError indicates a workflow violation: advancing or
// cancelling an order whose current status does not permit it.
type InvalidTransitionError struct {
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order is already %s and cannot be transitioned", e.Status)
}

// LineItem is one line of an order. Unit price and product name are
// snapshots taken at the time of sale; they never change afterwards even if
// the referenced product changes.
type LineItem struct {
	ID                  string
	OrderID             string
	ProductID           string
	Quantity            int64
	UnitPriceSnapshot   int64
	ProductNameSnapshot string
	LineTotal           int64
}

// AppliedDiscount is the audit record of the single discount used on an
// order. DiscountID is nullable: if the rule is later deleted the reference
// becomes nil but the audit row survives.
type AppliedDiscount struct {
	ID             string
	OrderID        string
	DiscountID     *string
	CodeSnapshot   string
	AmountDeducted int64
}

// Order is the immutable record of what was charged plus its fulfillment
// status. All monetary fields are minor units.
type Order struct {
	ID              string
	Status          Status
	Subtotal        int64
	Discount        int64
	Tax             int64
	FinalTotal      int64
	Items           []LineItem
	AppliedDiscount *AppliedDiscount
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Repository defines persistence for orders.
type Repository interface {
	// Create persists the order header, all line items, and the optional
	// applied-discount record in one atomic unit of work. On failure no
	// rows from the call are visible to subsequent readers.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order with its line items and applied discount.
	// Returns ErrNotFound when no such order exists.
	GetByID(ctx context.Context, id string) (*Order, error)
	// List returns all orders, newest first, with relations populated.
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus performs a conditional single-field update: it succeeds
	// only while the stored status still equals from. Returns ErrNotFound
	// when the order does not exist and ErrStatusConflict when the guard
	// fails.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
