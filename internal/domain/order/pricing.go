package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/product"
)

// TaxRatePercent is the fixed tax rate applied to the discounted subtotal.
const TaxRatePercent = 7

// ItemRequest is one requested line: a product and a quantity.
type ItemRequest struct {
	ProductID string
	Quantity  int64
}

// PricedLine is one resolved line of a pricing result. UnitPrice and
// ProductName become the persisted snapshots when the result is committed.
type PricedLine struct {
	ProductID   string
	ProductName string
	UnitPrice   int64
	Quantity    int64
	LineTotal   int64
}

// PricingResult carries everything a caller needs to either display the
// numbers or persist them without re-querying. All amounts are minor units.
type PricingResult struct {
	Subtotal   int64
	Discount   int64
	Tax        int64
	FinalTotal int64
	Lines      []PricedLine
	// Rule is the matched discount rule, nil when no code was supplied.
	Rule *discount.Rule
}

// PricingEngine computes order totals. It performs no writes and is safe to
// call repeatedly for live previews.
type PricingEngine struct {
	products  product.Repository
	discounts discount.Evaluator
}

// NewPricingEngine creates a PricingEngine over the given catalog source and
// discount evaluator.
func NewPricingEngine(products product.Repository, discounts discount.Evaluator) *PricingEngine {
	return &PricingEngine{products: products, discounts: discounts}
}

// PriceOrder resolves the requested products, computes subtotal, discount,
// tax, and final total, and returns the per-line detail.
//
// Availability is all-or-nothing over the distinct product id set: any
// missing or inactive product fails the whole request. Duplicate entries for
// the same product stay separate lines and are never merged.
func (e *PricingEngine) PriceOrder(ctx context.Context, items []ItemRequest, discountCode string) (*PricingResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	// Distinct ids for the availability check, preserving request order.
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	fetched, err := e.products.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	if len(byID) != len(ids) {
		var missing []string
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, &ProductsUnavailableError{ProductIDs: missing}
	}

	lines := make([]PricedLine, len(items))
	var subtotal int64
	for i, item := range items {
		p := byID[item.ProductID]
		lineTotal := p.Price * item.Quantity
		lines[i] = PricedLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
		}
		subtotal += lineTotal
	}

	var (
		deduction int64
		rule      *discount.Rule
	)
	if discountCode != "" {
		rule, deduction, err = e.discounts.Evaluate(ctx, discountCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	taxBase := subtotal - deduction
	if taxBase < 0 {
		return nil, ErrInvalidPricing
	}

	tax := taxBase * TaxRatePercent / 100
	return &PricingResult{
		Subtotal:   subtotal,
		Discount:   deduction,
		Tax:        tax,
		FinalTotal: taxBase + tax,
		Lines:      lines,
		Rule:       rule,
	}, nil
}
