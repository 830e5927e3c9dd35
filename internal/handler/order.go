package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type orderRequest struct {
	Items        []orderItemRequest `json:"items"`
	DiscountCode string             `json:"discountCode,omitempty"`
}

type pricedLineResponse struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	UnitPriceInt int64  `json:"unitPriceInt"`
	Quantity     int64  `json:"quantity"`
	LineTotalInt int64  `json:"lineTotalInt"`
}

type previewResponse struct {
	SubtotalInt   int64                `json:"subtotalInt"`
	DiscountInt   int64                `json:"discountInt"`
	TaxInt        int64                `json:"taxInt"`
	FinalTotalInt int64                `json:"finalTotalInt"`
	Items         []pricedLineResponse `json:"items"`
	DiscountCode  string               `json:"discountCode,omitempty"`
}

type orderItemResponse struct {
	ID                   string `json:"id"`
	ProductID            string `json:"productId"`
	ProductNameSnapshot  string `json:"productNameSnapshot"`
	UnitPriceSnapshotInt int64  `json:"unitPriceSnapshotInt"`
	Quantity             int64  `json:"quantity"`
	LineTotalInt         int64  `json:"lineTotalInt"`
}

type appliedDiscountResponse struct {
	CodeSnapshot      string `json:"codeSnapshot"`
	AmountDeductedInt int64  `json:"amountDeductedInt"`
}

type orderResponse struct {
	ID              string                   `json:"id"`
	Status          string                   `json:"status"`
	SubtotalInt     int64                    `json:"subtotalInt"`
	DiscountInt     int64                    `json:"discountInt"`
	TaxInt          int64                    `json:"taxInt"`
	FinalTotalInt   int64                    `json:"finalTotalInt"`
	Items           []orderItemResponse      `json:"items"`
	AppliedDiscount *appliedDiscountResponse `json:"appliedDiscount"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		SubtotalInt:   o.Subtotal,
		DiscountInt:   o.Discount,
		TaxInt:        o.Tax,
		FinalTotalInt: o.FinalTotal,
		Items:         make([]orderItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:                   it.ID,
			ProductID:            it.ProductID,
			ProductNameSnapshot:  it.ProductNameSnapshot,
			UnitPriceSnapshotInt: it.UnitPriceSnapshot,
			Quantity:             it.Quantity,
			LineTotalInt:         it.LineTotal,
		})
	}
	if o.AppliedDiscount != nil {
		resp.AppliedDiscount = &appliedDiscountResponse{
			CodeSnapshot:      o.AppliedDiscount.CodeSnapshot,
			AmountDeductedInt: o.AppliedDiscount.AmountDeducted,
		}
	}
	return resp
}

func (req orderRequest) toItems() ([]order.ItemRequest, string) {
	items := make([]order.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		if _, err := uuid.Parse(it.ProductID); err != nil {
			return nil, it.ProductID
		}
		items = append(items, order.ItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return items, ""
}

// PreviewOrder prices a cart without persisting anything.
func (h *Handler) PreviewOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	items, badID := req.toItems()
	if badID != "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_PRODUCT_ID", "productId is not a valid uuid: "+badID)
		return
	}

	result, err := h.orders.Preview(r.Context(), items, req.DiscountCode)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}

	resp := previewResponse{
		SubtotalInt:   result.Subtotal,
		DiscountInt:   result.Discount,
		TaxInt:        result.Tax,
		FinalTotalInt: result.FinalTotal,
		Items:         make([]pricedLineResponse, 0, len(result.Lines)),
	}
	for _, line := range result.Lines {
		resp.Items = append(resp.Items, pricedLineResponse{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			UnitPriceInt: line.UnitPrice,
			Quantity:     line.Quantity,
			LineTotalInt: line.LineTotal,
		})
	}
	if result.Rule != nil {
		resp.DiscountCode = result.Rule.Code
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// CreateOrder prices and persists a new order in status OPEN.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	items, badID := req.toItems()
	if badID != "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_PRODUCT_ID", "productId is not a valid uuid: "+badID)
		return
	}

	created, err := h.orders.Create(r.Context(), items, req.DiscountCode)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOrderResponse(created))
}

// ListOrders returns recent orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		mapOrderError(w, r, err)
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetOrder returns a single order with its line items and applied discount.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// AdvanceOrder moves an order to the next status in its lifecycle.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Advance(r.Context(), id)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// CancelOrder cancels an order from any non-terminal status.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func orderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "order id is not a valid uuid")
		return "", false
	}
	return id, true
}

func mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		qtyErr        *order.InvalidQuantityError
		unavailErr    *order.ProductsUnavailableError
		transitionErr *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, "EMPTY_ORDER", "order must contain at least one item")
	case errors.As(err, &qtyErr):
		writeError(w, r, http.StatusBadRequest, "INVALID_QUANTITY", qtyErr.Error())
	case errors.As(err, &unavailErr):
		writeError(w, r, http.StatusUnprocessableEntity, "PRODUCTS_UNAVAILABLE", unavailErr.Error())
	case errors.Is(err, discount.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "DISCOUNT_NOT_FOUND", "discount code does not exist")
	case errors.Is(err, discount.ErrInactive):
		writeError(w, r, http.StatusUnprocessableEntity, "DISCOUNT_INACTIVE", "discount code is not active")
	case errors.Is(err, order.ErrInvalidPricing):
		writeError(w, r, http.StatusBadRequest, "INVALID_PRICING", "order pricing is invalid")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order does not exist")
	case errors.As(err, &transitionErr):
		writeError(w, r, http.StatusUnprocessableEntity, "INVALID_TRANSITION", transitionErr.Error())
	case errors.Is(err, order.ErrStatusConflict):
		writeError(w, r, http.StatusConflict, "STATUS_CONFLICT", "order status changed concurrently, retry")
	default:
		internalError(w, r, err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	logInternal(r, err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
