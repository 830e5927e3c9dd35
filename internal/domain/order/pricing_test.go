package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]product.Product
}

func (m *mockProductRepo) ListActive(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) FindActiveByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Deactivate(_ context.Context, _ string) error       { return nil }
func (m *mockProductRepo) Count(_ context.Context) (int64, error)             { return 0, nil }

type mockEvaluator struct {
	rule *discount.Rule
	err  error
}

func (m *mockEvaluator) Evaluate(_ context.Context, _ string, subtotal int64) (*discount.Rule, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	d, err := discount.Deduction(m.rule, subtotal)
	if err != nil {
		return nil, 0, err
	}
	return m.rule, d, nil
}

// --- Helpers ---

func newCatalog(products ...product.Product) *mockProductRepo {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID}
}

func activeProduct(id, name string, price int64) product.Product {
	return product.Product{ID: id, Name: name, Price: price, Active: true}
}

// --- Tests ---

func TestPriceOrder_EmptyItems(t *testing.T) {
	engine := NewPricingEngine(newCatalog(), &mockEvaluator{})

	_, err := engine.PriceOrder(context.Background(), nil, "")
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPriceOrder_InvalidQuantity(t *testing.T) {
	engine := NewPricingEngine(newCatalog(activeProduct("p1", "Pad Thai", 8000)), &mockEvaluator{})

	_, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 0},
	}, "")

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
}

func TestPriceOrder_ProductsUnavailable(t *testing.T) {
	inactive := product.Product{ID: "p2", Name: "Retired", Price: 100, Active: false}
	engine := NewPricingEngine(newCatalog(activeProduct("p1", "Pad Thai", 8000), inactive), &mockEvaluator{})

	_, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	}, "")

	var unavailErr *ProductsUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.ElementsMatch(t, []string{"p2", "missing"}, unavailErr.ProductIDs)
}

func TestPriceOrder_NoDiscount(t *testing.T) {
	engine := NewPricingEngine(newCatalog(
		activeProduct("p1", "Pad Thai", 8000),
		activeProduct("p2", "Coke Zero", 2500),
	), &mockEvaluator{})

	res, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}, "")
	require.NoError(t, err)

	// subtotal 18500, tax 7% = 1295
	assert.Equal(t, int64(18500), res.Subtotal)
	assert.Equal(t, int64(0), res.Discount)
	assert.Equal(t, int64(1295), res.Tax)
	assert.Equal(t, int64(19795), res.FinalTotal)
	assert.Nil(t, res.Rule)

	require.Len(t, res.Lines, 2)
	assert.Equal(t, int64(16000), res.Lines[0].LineTotal)
	assert.Equal(t, "Pad Thai", res.Lines[0].ProductName)
}

func TestPriceOrder_TaxFloors(t *testing.T) {
	engine := NewPricingEngine(newCatalog(activeProduct("p1", "Mint", 15)), &mockEvaluator{})

	res, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
	}, "")
	require.NoError(t, err)

	// 7% of 15 is 1.05; integer arithmetic floors to 1.
	assert.Equal(t, int64(1), res.Tax)
	assert.Equal(t, int64(16), res.FinalTotal)
}

func TestPriceOrder_WithPercentageDiscount(t *testing.T) {
	engine := NewPricingEngine(
		newCatalog(activeProduct("p1", "Pad Thai", 8000)),
		&mockEvaluator{rule: &discount.Rule{ID: "d1", Code: "SUMMER10", Type: discount.TypePercentage, Value: 10, Active: true}},
	)

	res, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 2},
	}, "SUMMER10")
	require.NoError(t, err)

	// subtotal 16000, discount 1600, tax 7% of 14400 = 1008
	assert.Equal(t, int64(16000), res.Subtotal)
	assert.Equal(t, int64(1600), res.Discount)
	assert.Equal(t, int64(1008), res.Tax)
	assert.Equal(t, int64(15408), res.FinalTotal)
	require.NotNil(t, res.Rule)
	assert.Equal(t, "SUMMER10", res.Rule.Code)
}

func TestPriceOrder_FixedDiscountClampedToSubtotal(t *testing.T) {
	engine := NewPricingEngine(
		newCatalog(activeProduct("p1", "Coke Zero", 2500)),
		&mockEvaluator{rule: &discount.Rule{Code: "WELCOME50", Type: discount.TypeFixedAmount, Value: 5000, Active: true}},
	)

	res, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
	}, "WELCOME50")
	require.NoError(t, err)

	assert.Equal(t, int64(2500), res.Discount)
	assert.Equal(t, int64(0), res.Tax)
	assert.Equal(t, int64(0), res.FinalTotal)
}

func TestPriceOrder_DiscountErrorPropagates(t *testing.T) {
	engine := NewPricingEngine(
		newCatalog(activeProduct("p1", "Pad Thai", 8000)),
		&mockEvaluator{err: discount.ErrInactive},
	)

	_, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
	}, "EXPIRED")
	require.ErrorIs(t, err, discount.ErrInactive)
}

func TestPriceOrder_DuplicateProductKeepsSeparateLines(t *testing.T) {
	engine := NewPricingEngine(newCatalog(activeProduct("p1", "Pad Thai", 8000)), &mockEvaluator{})

	res, err := engine.PriceOrder(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	}, "")
	require.NoError(t, err)

	require.Len(t, res.Lines, 2)
	assert.Equal(t, int64(8000), res.Lines[0].LineTotal)
	assert.Equal(t, int64(16000), res.Lines[1].LineTotal)
	assert.Equal(t, int64(24000), res.Subtotal)
}
