package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/product"
)

type productResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PriceInt  int64     `json:"priceInt"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type createProductRequest struct {
	Name     string `json:"name"`
	PriceInt int64  `json:"priceInt"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type updateProductRequest struct {
	Name     *string `json:"name,omitempty"`
	PriceInt *int64  `json:"priceInt,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		PriceInt:  p.Price,
		ImageURL:  p.ImageURL,
		IsActive:  p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ListProducts returns the active catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// CreateProduct adds a catalog entry.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_NAME", "name must not be empty")
		return
	}
	if req.PriceInt < 0 {
		writeError(w, r, http.StatusBadRequest, "INVALID_PRICE", "priceInt must not be negative")
		return
	}

	p := &product.Product{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(req.Name),
		Price:    req.PriceInt,
		ImageURL: req.ImageURL,
		Active:   true,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		internalError(w, r, err)
		return
	}
	created, err := h.products.GetByID(r.Context(), p.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toProductResponse(created))
}

// GetProduct returns a single product by id, active or not.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		mapProductError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toProductResponse(p))
}

// UpdateProduct applies a partial update. Absent fields keep their value.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req updateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		mapProductError(w, r, err)
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "INVALID_NAME", "name must not be empty")
			return
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.PriceInt != nil {
		if *req.PriceInt < 0 {
			writeError(w, r, http.StatusBadRequest, "INVALID_PRICE", "priceInt must not be negative")
			return
		}
		p.Price = *req.PriceInt
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		p.Active = *req.IsActive
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		mapProductError(w, r, err)
		return
	}
	updated, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		mapProductError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toProductResponse(updated))
}

// DeleteProduct deactivates a product. Historical orders keep their
// snapshots, so nothing is removed from storage.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if err := h.products.Deactivate(r.Context(), id); err != nil {
		mapProductError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedProducts inserts the starter catalog when the table is empty.
func (h *Handler) SeedProducts(w http.ResponseWriter, r *http.Request) {
	n, err := h.products.Count(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if n > 0 {
		writeJSON(w, r, http.StatusOK, map[string]any{"seeded": 0, "message": "products already present"})
		return
	}
	for _, p := range product.SeedCatalog() {
		if err := h.products.Create(r.Context(), p); err != nil {
			internalError(w, r, err)
			return
		}
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"seeded": len(product.SeedCatalog())})
}

func productID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "product id is not a valid uuid")
		return "", false
	}
	return id, true
}

func mapProductError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, product.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product does not exist")
		return
	}
	internalError(w, r, err)
}
