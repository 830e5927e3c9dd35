package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
)

type createDiscountRequest struct {
	Code  string `json:"code"`
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

type discountResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Type      string    `json:"type"`
	Value     int64     `json:"value"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toDiscountResponse(rule *discount.Rule) discountResponse {
	return discountResponse{
		ID:        rule.ID,
		Code:      rule.Code,
		Type:      string(rule.Type),
		Value:     rule.Value,
		IsActive:  rule.Active,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}

// CreateDiscount registers a new discount rule. Codes are stored
// normalized and must be unique.
func (h *Handler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	code := discount.NormalizeCode(req.Code)
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_CODE", "code must not be empty")
		return
	}
	typ := discount.Type(req.Type)
	switch typ {
	case discount.TypePercentage:
		if req.Value < 0 || req.Value > 100 {
			writeError(w, r, http.StatusBadRequest, "INVALID_VALUE", "percentage value must be between 0 and 100")
			return
		}
	case discount.TypeFixedAmount:
		if req.Value < 0 {
			writeError(w, r, http.StatusBadRequest, "INVALID_VALUE", "fixed amount must not be negative")
			return
		}
	default:
		writeError(w, r, http.StatusBadRequest, "INVALID_TYPE", "type must be PERCENTAGE or FIXED_AMOUNT")
		return
	}

	rule := &discount.Rule{
		ID:     uuid.New().String(),
		Code:   code,
		Type:   typ,
		Value:  req.Value,
		Active: true,
	}
	if err := h.discounts.Create(r.Context(), rule); err != nil {
		if errors.Is(err, discount.ErrDuplicateCode) {
			writeError(w, r, http.StatusConflict, "DUPLICATE_CODE", "discount code already exists")
			return
		}
		internalError(w, r, err)
		return
	}
	created, err := h.discounts.FindByNormalizedCode(r.Context(), code)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toDiscountResponse(created))
}

// SeedDiscounts inserts the starter rules when the table is empty.
func (h *Handler) SeedDiscounts(w http.ResponseWriter, r *http.Request) {
	n, err := h.discounts.Count(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if n > 0 {
		writeJSON(w, r, http.StatusOK, map[string]any{"seeded": 0, "message": "discounts already present"})
		return
	}
	rules := discount.SeedRules()
	for _, rule := range rules {
		if err := h.discounts.Create(r.Context(), rule); err != nil {
			internalError(w, r, err)
			return
		}
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"seeded": len(rules)})
}
