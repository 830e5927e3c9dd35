package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service is the order transaction manager. It wraps the pricing engine's
// output plus persistence in one atomic unit, and drives the status workflow
// after creation.
type Service struct {
	pricer *PricingEngine
	orders Repository
}

// NewService creates a Service with the required dependencies.
func NewService(pricer *PricingEngine, orders Repository) *Service {
	return &Service{pricer: pricer, orders: orders}
}

// Preview prices a basket without persisting anything. Preview and Create
// share the same pricing path, so their numbers can never diverge.
func (s *Service) Preview(ctx context.Context, items []ItemRequest, discountCode string) (*PricingResult, error) {
	return s.pricer.PriceOrder(ctx, items, discountCode)
}

// Create prices the basket and persists the order header, its line items,
// and the optional applied-discount audit record atomically. A pricing
// failure leaves storage untouched. The returned order carries the persisted
// relations and database timestamps.
func (s *Service) Create(ctx context.Context, items []ItemRequest, discountCode string) (*Order, error) {
	res, err := s.pricer.PriceOrder(ctx, items, discountCode)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:         uuid.New().String(),
		Status:     StatusOpen,
		Subtotal:   res.Subtotal,
		Discount:   res.Discount,
		Tax:        res.Tax,
		FinalTotal: res.FinalTotal,
	}

	o.Items = make([]LineItem, len(res.Lines))
	for i, line := range res.Lines {
		// Snapshots come from the pricing result, never recomputed here.
		o.Items[i] = LineItem{
			ID:                  uuid.New().String(),
			OrderID:             o.ID,
			ProductID:           line.ProductID,
			Quantity:            line.Quantity,
			UnitPriceSnapshot:   line.UnitPrice,
			ProductNameSnapshot: line.ProductName,
			LineTotal:           line.LineTotal,
		}
	}

	if res.Rule != nil {
		ruleID := res.Rule.ID
		o.AppliedDiscount = &AppliedDiscount{
			ID:             uuid.New().String(),
			OrderID:        o.ID,
			DiscountID:     &ruleID,
			CodeSnapshot:   res.Rule.Code,
			AmountDeducted: res.Discount,
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return s.orders.GetByID(ctx, o.ID)
}

// Get returns one order with its relations.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns the full order history, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// Advance moves an order to the single next step of the linear workflow.
// Terminal orders fail with InvalidTransitionError. The underlying update is
// conditional on the status read here, so a concurrent transition surfaces
// as ErrStatusConflict instead of a lost update.
func (s *Service) Advance(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := Next(o.Status)
	if !ok {
		return nil, &InvalidTransitionError{Status: o.Status}
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, next); err != nil {
		return nil, err
	}

	return s.orders.GetByID(ctx, id)
}

// Cancel sets an order to CANCELLED from any non-terminal state. Monetary
// fields are untouched; cancellation only changes status.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if IsTerminal(o.Status) {
		return nil, &InvalidTransitionError{Status: o.Status}
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, StatusCancelled); err != nil {
		return nil, err
	}

	return s.orders.GetByID(ctx, id)
}
