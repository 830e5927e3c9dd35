package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/order"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/product"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/report"
)

// Fixed ids so request bodies can use valid uuids.
const (
	padThaiID  = "11111111-1111-4111-8111-111111111111"
	cokeZeroID = "22222222-2222-4222-8222-222222222222"
	unknownID  = "99999999-9999-4999-8999-999999999999"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]product.Product
}

func (m *mockProductRepo) ListActive(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
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

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *product.Product) error {
	if _, ok := m.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.byID[p.ID] = *p
	return nil
}

func (m *mockProductRepo) Deactivate(_ context.Context, id string) error {
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Active = false
	m.byID[id] = p
	return nil
}

func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

type mockDiscountRepo struct {
	byCode map[string]*discount.Rule
}

func (m *mockDiscountRepo) FindByNormalizedCode(_ context.Context, code string) (*discount.Rule, error) {
	r, ok := m.byCode[code]
	if !ok {
		return nil, discount.ErrNotFound
	}
	return r, nil
}

func (m *mockDiscountRepo) Create(_ context.Context, r *discount.Rule) error {
	if _, ok := m.byCode[r.Code]; ok {
		return discount.ErrDuplicateCode
	}
	m.byCode[r.Code] = r
	return nil
}

func (m *mockDiscountRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byCode)), nil
}

type mockOrderRepo struct {
	byID      map[string]*order.Order
	statusErr error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	cp := *o
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]order.Order, error) {
	out := make([]order.Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, from, to order.Status) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status != from {
		return order.ErrStatusConflict
	}
	o.Status = to
	return nil
}

type mockReportRepo struct{}

func (mockReportRepo) Summarize(_ context.Context, _, _ time.Time) (report.Summary, error) {
	return report.Summary{}, nil
}

func (mockReportRepo) CountOrders(_ context.Context, _, _ time.Time) (int64, error) {
	return 0, nil
}

func (mockReportRepo) OrderPage(_ context.Context, _, _ time.Time, _, _ int) ([]report.OrderRow, error) {
	return nil, nil
}

func (mockReportRepo) ItemsByOrderIDs(_ context.Context, _ []string) (map[string][]report.ItemRow, error) {
	return nil, nil
}

func (mockReportRepo) DiscountsByOrderIDs(_ context.Context, _ []string) (map[string][]report.DiscountRow, error) {
	return nil, nil
}

// --- Helpers ---

type fixture struct {
	router http.Handler
	orders *mockOrderRepo
}

func newFixture() *fixture {
	products := &mockProductRepo{byID: map[string]product.Product{
		padThaiID:  {ID: padThaiID, Name: "Pad Thai", Price: 8000, Active: true},
		cokeZeroID: {ID: cokeZeroID, Name: "Coke Zero", Price: 2500, Active: true},
	}}
	discounts := &mockDiscountRepo{byCode: map[string]*discount.Rule{
		"SUMMER10": {ID: "d1", Code: "SUMMER10", Type: discount.TypePercentage, Value: 10, Active: true},
		"EXPIRED":  {ID: "d2", Code: "EXPIRED", Type: discount.TypePercentage, Value: 20, Active: false},
	}}
	orders := &mockOrderRepo{byID: make(map[string]*order.Order)}

	pricer := order.NewPricingEngine(products, discount.NewRepoEvaluator(discounts))
	h := New(
		products,
		discounts,
		order.NewService(pricer, orders),
		report.NewService(mockReportRepo{}),
	)
	return &fixture{router: h.Router(), orders: orders}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// --- Tests ---

func TestPreviewOrder(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/preview", orderRequest{
		Items:        []orderItemRequest{{ProductID: padThaiID, Quantity: 2}},
		DiscountCode: "SUMMER10",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[previewResponse](t, w)
	assert.Equal(t, int64(16000), resp.SubtotalInt)
	assert.Equal(t, int64(1600), resp.DiscountInt)
	assert.Equal(t, int64(1008), resp.TaxInt)
	assert.Equal(t, int64(15408), resp.FinalTotalInt)
	assert.Equal(t, "SUMMER10", resp.DiscountCode)
	assert.Empty(t, f.orders.byID, "preview must not persist")
}

func TestPreviewOrder_EmptyItems(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/preview", orderRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_ORDER", decode[errorResponse](t, w).Code)
}

func TestPreviewOrder_BadProductID(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/preview", orderRequest{
		Items: []orderItemRequest{{ProductID: "not-a-uuid", Quantity: 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PRODUCT_ID", decode[errorResponse](t, w).Code)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{
			{ProductID: padThaiID, Quantity: 1},
			{ProductID: cokeZeroID, Quantity: 2},
		},
		DiscountCode: "summer10",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode[orderResponse](t, w)
	assert.Equal(t, "OPEN", resp.Status)
	assert.Equal(t, int64(13000), resp.SubtotalInt)
	assert.Equal(t, int64(1300), resp.DiscountInt)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Pad Thai", resp.Items[0].ProductNameSnapshot)
	require.NotNil(t, resp.AppliedDiscount)
	assert.Equal(t, "SUMMER10", resp.AppliedDiscount.CodeSnapshot)
	assert.Equal(t, int64(1300), resp.AppliedDiscount.AmountDeductedInt)
}

func TestCreateOrder_UnknownDiscount(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items:        []orderItemRequest{{ProductID: padThaiID, Quantity: 1}},
		DiscountCode: "NOPE",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DISCOUNT_NOT_FOUND", decode[errorResponse](t, w).Code)
	assert.Empty(t, f.orders.byID)
}

func TestCreateOrder_InactiveDiscount(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items:        []orderItemRequest{{ProductID: padThaiID, Quantity: 1}},
		DiscountCode: "EXPIRED",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DISCOUNT_INACTIVE", decode[errorResponse](t, w).Code)
}

func TestCreateOrder_ProductUnavailable(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: unknownID, Quantity: 1}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PRODUCTS_UNAVAILABLE", decode[errorResponse](t, w).Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/orders/"+unknownID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decode[errorResponse](t, w).Code)
}

func TestListOrders(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/orders/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]orderResponse](t, w))

	created := decode[orderResponse](t, f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: cokeZeroID, Quantity: 3}},
	}))

	w = f.do(t, http.MethodGet, "/orders/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]orderResponse](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, int64(7500), listed[0].SubtotalInt)
	require.Len(t, listed[0].Items, 1)
	assert.Equal(t, "Coke Zero", listed[0].Items[0].ProductNameSnapshot)
}

func TestAdvanceOrder(t *testing.T) {
	f := newFixture()

	created := decode[orderResponse](t, f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: padThaiID, Quantity: 1}},
	}))

	w := f.do(t, http.MethodPatch, "/orders/"+created.ID+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", decode[orderResponse](t, w).Status)
}

func TestAdvanceOrder_Terminal(t *testing.T) {
	f := newFixture()

	created := decode[orderResponse](t, f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: padThaiID, Quantity: 1}},
	}))
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/orders/"+created.ID+"/cancel", nil).Code)

	w := f.do(t, http.MethodPatch, "/orders/"+created.ID+"/advance", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[errorResponse](t, w).Code)
}

func TestAdvanceOrder_Conflict(t *testing.T) {
	f := newFixture()

	created := decode[orderResponse](t, f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: padThaiID, Quantity: 1}},
	}))

	f.orders.statusErr = order.ErrStatusConflict
	w := f.do(t, http.MethodPatch, "/orders/"+created.ID+"/advance", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STATUS_CONFLICT", decode[errorResponse](t, w).Code)
}

func TestListProducts(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/products/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	listed := decode[[]productResponse](t, w)
	require.Len(t, listed, 2)
	byName := make(map[string]productResponse, len(listed))
	for _, p := range listed {
		byName[p.Name] = p
	}
	assert.Equal(t, int64(8000), byName["Pad Thai"].PriceInt)
	assert.Equal(t, int64(2500), byName["Coke Zero"].PriceInt)
	assert.True(t, byName["Pad Thai"].IsActive)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/products/", createProductRequest{Name: "  ", PriceInt: 100})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/products/", createProductRequest{Name: "Som Tum", PriceInt: -1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/products/", createProductRequest{Name: "Som Tum", PriceInt: 6000})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[productResponse](t, w)
	assert.True(t, resp.IsActive)
	assert.Equal(t, int64(6000), resp.PriceInt)
}

func TestDeleteProduct_Deactivates(t *testing.T) {
	f := newFixture()

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/products/"+padThaiID, nil).Code)

	// Deactivated products stay fetchable but leave the active catalog.
	w := f.do(t, http.MethodGet, "/products/"+padThaiID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[productResponse](t, w).IsActive)

	// And are no longer orderable.
	w = f.do(t, http.MethodPost, "/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: padThaiID, Quantity: 1}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateDiscount_Duplicate(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/discounts/", createDiscountRequest{
		Code: "summer10", Type: "PERCENTAGE", Value: 10,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_CODE", decode[errorResponse](t, w).Code)
}

func TestCreateDiscount_Validation(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/discounts/", createDiscountRequest{
		Code: "NEW15", Type: "PERCENTAGE", Value: 150,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/discounts/", createDiscountRequest{
		Code: "NEW15", Type: "BOGOF", Value: 1,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/discounts/", createDiscountRequest{
		Code: "new15", Type: "PERCENTAGE", Value: 15,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "NEW15", decode[discountResponse](t, w).Code)
}

func TestGetReport_InvalidRange(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/reports?from=bogus&to=2025-01-31", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RANGE", decode[errorResponse](t, w).Code)
}

func TestGetReport_Empty(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/reports?from=2025-01-01&to=2025-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[reportResponse](t, w)
	assert.Equal(t, "2025-01-01", resp.Period.From)
	assert.Equal(t, int64(0), resp.Summary.OrderCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}
