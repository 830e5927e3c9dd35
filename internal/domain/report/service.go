package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

const (
	dateLayout  = "2006-01-02"
	maxPageSize = 100
)

// Service validates report parameters and assembles report pages.
type Service struct {
	repo Repository
}

// NewService creates a report Service over the given Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// parseRange turns inclusive from/to dates into a [start, endExclusive)
// window: from at midnight up to the start of the day after to.
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, from, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, &InvalidRangeError{Reason: "use YYYY-MM-DD for from/to"}
	}
	end, err := time.ParseInLocation(dateLayout, to, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, &InvalidRangeError{Reason: "use YYYY-MM-DD for from/to"}
	}

	endExclusive := end.AddDate(0, 0, 1)
	if !endExclusive.After(start) {
		return time.Time{}, time.Time{}, &InvalidRangeError{Reason: `"to" must be the same day or after "from"`}
	}
	return start, endExclusive, nil
}

// Get builds the report for the inclusive date range [from, to]. The
// summary, total count, and order page run as parallel queries; items and
// applied discounts for the page are then batch-loaded to avoid N+1.
func (s *Service) Get(ctx context.Context, from, to string, page, pageSize int) (*Page, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, &InvalidRangeError{Reason: "page must be >= 1"}
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return nil, &InvalidRangeError{Reason: "pageSize must be between 1 and 100"}
	}

	var (
		summary Summary
		total   int64
		orders  []OrderRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if summary, err = s.repo.Summarize(gctx, start, end); err != nil {
			return errors.Wrap(err, "summarize orders")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if total, err = s.repo.CountOrders(gctx, start, end); err != nil {
			return errors.Wrap(err, "count orders")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if orders, err = s.repo.OrderPage(gctx, start, end, pageSize, (page-1)*pageSize); err != nil {
			return errors.Wrap(err, "load order page")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.NetSales = summary.GrossSales - summary.Discounts
	if summary.OrderCount > 0 {
		summary.AvgOrderValue = summary.FinalSales / summary.OrderCount
	}

	if len(orders) > 0 {
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}

		var (
			items     map[string][]ItemRow
			discounts map[string][]DiscountRow
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			if items, err = s.repo.ItemsByOrderIDs(gctx, ids); err != nil {
				return errors.Wrap(err, "load order items")
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if discounts, err = s.repo.DiscountsByOrderIDs(gctx, ids); err != nil {
				return errors.Wrap(err, "load applied discounts")
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i := range orders {
			orders[i].Items = items[orders[i].ID]
			orders[i].Discounts = discounts[orders[i].ID]
		}
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &Page{
		From:       from,
		To:         to,
		Summary:    summary,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Orders:     orders,
	}, nil
}
