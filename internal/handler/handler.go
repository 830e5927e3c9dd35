// Package handler exposes the POS core over HTTP. Handlers are a thin
// mapping layer: decode, delegate to a domain service, map the result or
// error back to JSON.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/order"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/product"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/report"
)

// Handler holds the domain dependencies for all HTTP endpoints.
type Handler struct {
	products  product.Repository
	discounts discount.Repository
	orders    *order.Service
	reports   *report.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	products product.Repository,
	discounts discount.Repository,
	orders *order.Service,
	reports *report.Service,
) *Handler {
	return &Handler{
		products:  products,
		discounts: discounts,
		orders:    orders,
		reports:   reports,
	}
}

// Router returns the API routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Post("/preview", h.PreviewOrder)
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/advance", h.AdvanceOrder)
		r.Patch("/{id}/cancel", h.CancelOrder)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Post("/seed", h.SeedProducts)
		r.Get("/{id}", h.GetProduct)
		r.Patch("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})

	r.Route("/discounts", func(r chi.Router) {
		r.Post("/", h.CreateDiscount)
		r.Post("/seed", h.SeedDiscounts)
	})

	r.Get("/reports", h.GetReport)

	return r
}
