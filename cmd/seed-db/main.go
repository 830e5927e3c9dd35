// Command seed-db runs migrations and loads the starter catalog and discount
// rules into an empty database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/pon-ktnrp/POSlmwn/internal/domain/discount"
	"github.com/pon-ktnrp/POSlmwn/internal/domain/product"
	"github.com/pon-ktnrp/POSlmwn/internal/repository"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool)); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedDiscounts(ctx, repository.NewDiscountRepository(pool)); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count products")
	}
	if n > 0 {
		slog.Info("products already present, skipping", slog.Int64("count", n))
		return nil
	}

	for _, p := range product.SeedCatalog() {
		if err := repo.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create product %s", p.Name)
		}
		slog.Info("created product", slog.String("name", p.Name), slog.Int64("priceInt", p.Price))
	}
	return nil
}

func seedDiscounts(ctx context.Context, repo *repository.DiscountRepository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count discounts")
	}
	if n > 0 {
		slog.Info("discounts already present, skipping", slog.Int64("count", n))
		return nil
	}

	for _, rule := range discount.SeedRules() {
		if err := repo.Create(ctx, rule); err != nil {
			return errors.Wrapf(err, "create discount %s", rule.Code)
		}
		slog.Info("created discount",
			slog.String("code", rule.Code),
			slog.String("type", string(rule.Type)),
			slog.Int64("value", rule.Value),
		)
	}
	return nil
}
