package discount

import (
	"context"

	"github.com/go-faster/errors"
)

// Evaluator validates a discount code against a subtotal and returns the
// matched rule together with the deduction it produces, in minor units.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, subtotal int64) (*Rule, int64, error)
}

// RepoEvaluator implements Evaluator by looking up rules from a Repository.
// It is read-only and safe for unlimited concurrent use.
type RepoEvaluator struct {
	repo Repository
}

// NewRepoEvaluator creates a RepoEvaluator backed by the given Repository.
func NewRepoEvaluator(repo Repository) *RepoEvaluator {
	return &RepoEvaluator{repo: repo}
}

// Evaluate normalizes the code, looks up the matching rule, and computes the
// deduction. It returns ErrNotFound for unknown codes and ErrInactive for
// deactivated rules; both surface to the caller unchanged.
func (e *RepoEvaluator) Evaluate(ctx context.Context, code string, subtotal int64) (*Rule, int64, error) {
	rule, err := e.repo.FindByNormalizedCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, errors.Wrap(err, "lookup discount")
	}

	if !rule.Active {
		return nil, 0, ErrInactive
	}

	d, err := Deduction(rule, subtotal)
	if err != nil {
		return nil, 0, err
	}

	return rule, d, nil
}
