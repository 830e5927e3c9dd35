package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/report"
)

type reportSummaryResponse struct {
	OrderCount       int64 `json:"orderCount"`
	GrossSalesInt    int64 `json:"grossSalesInt"`
	DiscountsInt     int64 `json:"discountsInt"`
	NetSalesInt      int64 `json:"netSalesInt"`
	TaxInt           int64 `json:"taxInt"`
	FinalSalesInt    int64 `json:"finalSalesInt"`
	AvgOrderValueInt int64 `json:"avgOrderValueInt"`
}

type reportItemResponse struct {
	ProductName  string `json:"productName"`
	Quantity     int64  `json:"quantity"`
	UnitPriceInt int64  `json:"unitPriceInt"`
	LineTotalInt int64  `json:"lineTotalInt"`
}

type reportDiscountResponse struct {
	CodeSnapshot      string `json:"codeSnapshot"`
	AmountDeductedInt int64  `json:"amountDeductedInt"`
}

type reportOrderResponse struct {
	ID            string                   `json:"id"`
	Status        string                   `json:"status"`
	CreatedAt     time.Time                `json:"createdAt"`
	SubtotalInt   int64                    `json:"subtotalInt"`
	DiscountInt   int64                    `json:"discountInt"`
	TaxInt        int64                    `json:"taxInt"`
	FinalTotalInt int64                    `json:"finalTotalInt"`
	Items         []reportItemResponse     `json:"items"`
	Discounts     []reportDiscountResponse `json:"discounts"`
}

type reportResponse struct {
	Period struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"period"`
	Summary    reportSummaryResponse `json:"summary"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	Total      int64                 `json:"total"`
	TotalPages int64                 `json:"totalPages"`
	Orders     []reportOrderResponse `json:"orders"`
}

// GetReport builds a sales report for an inclusive date range.
//
// GET /api/reports?from=2025-01-01&to=2025-01-31&page=1&pageSize=20
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, pageSize := 1, 20
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_RANGE", "page must be an integer")
			return
		}
		page = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_RANGE", "pageSize must be an integer")
			return
		}
		pageSize = n
	}

	result, err := h.reports.Get(r.Context(), q.Get("from"), q.Get("to"), page, pageSize)
	if err != nil {
		var rangeErr *report.InvalidRangeError
		if errors.As(err, &rangeErr) {
			writeError(w, r, http.StatusBadRequest, "INVALID_RANGE", rangeErr.Reason)
			return
		}
		internalError(w, r, err)
		return
	}

	resp := reportResponse{
		Summary: reportSummaryResponse{
			OrderCount:       result.Summary.OrderCount,
			GrossSalesInt:    result.Summary.GrossSales,
			DiscountsInt:     result.Summary.Discounts,
			NetSalesInt:      result.Summary.NetSales,
			TaxInt:           result.Summary.Tax,
			FinalSalesInt:    result.Summary.FinalSales,
			AvgOrderValueInt: result.Summary.AvgOrderValue,
		},
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		Orders:     make([]reportOrderResponse, 0, len(result.Orders)),
	}
	resp.Period.From = result.From
	resp.Period.To = result.To

	for _, o := range result.Orders {
		row := reportOrderResponse{
			ID:            o.ID,
			Status:        o.Status,
			CreatedAt:     o.CreatedAt,
			SubtotalInt:   o.Subtotal,
			DiscountInt:   o.Discount,
			TaxInt:        o.Tax,
			FinalTotalInt: o.FinalTotal,
			Items:         make([]reportItemResponse, 0, len(o.Items)),
			Discounts:     make([]reportDiscountResponse, 0, len(o.Discounts)),
		}
		for _, it := range o.Items {
			row.Items = append(row.Items, reportItemResponse{
				ProductName:  it.ProductName,
				Quantity:     it.Quantity,
				UnitPriceInt: it.UnitPrice,
				LineTotalInt: it.LineTotal,
			})
		}
		for _, d := range o.Discounts {
			row.Discounts = append(row.Discounts, reportDiscountResponse{
				CodeSnapshot:      d.CodeSnapshot,
				AmountDeductedInt: d.AmountDeducted,
			})
		}
		resp.Orders = append(resp.Orders, row)
	}
	writeJSON(w, r, http.StatusOK, resp)
}
