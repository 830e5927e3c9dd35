package discount

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Type enumerates the supported discount rule strategies.
type Type string

const (
	// TypePercentage deducts a percentage of the subtotal.
	TypePercentage Type = "PERCENTAGE"
	// TypeFixedAmount deducts a fixed amount in minor units, capped at the subtotal.
	TypeFixedAmount Type = "FIXED_AMOUNT"
)

var (
	// ErrNotFound is returned when no rule matches the normalized code.
	ErrNotFound = errors.New("discount code not found")
	// ErrInactive is returned when the matched rule has been deactivated.
	ErrInactive = errors.New("discount code is no longer active")
	// ErrDuplicateCode is returned when creating a rule whose code already exists.
	ErrDuplicateCode = errors.New("discount code already exists")
)

// Rule defines a discount's strategy and value. Value is percentage points
// (0-100) for PERCENTAGE rules and minor units for FIXED_AMOUNT rules.
// Codes are stored normalized to uppercase.
type Rule struct {
	ID        string
	Code      string
	Type      Type
	Value     int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides lookup and administration of discount rules.
type Repository interface {
	// FindByNormalizedCode looks up a rule by its already-normalized code.
	// Returns ErrNotFound when no rule matches.
	FindByNormalizedCode(ctx context.Context, code string) (*Rule, error)
	// Create persists a new rule. Returns ErrDuplicateCode when the code is taken.
	Create(ctx context.Context, r *Rule) error
	Count(ctx context.Context) (int64, error)
}

// NormalizeCode trims surrounding whitespace and uppercases a code, matching
// how codes are stored.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Deduction calculates the amount a rule deducts from the given subtotal.
// Integer arithmetic only: percentage deductions floor via integer division.
// The result is clamped to the subtotal so the payable amount can never go
// negative; the clamp is deliberate behaviour, not an error.
func Deduction(rule *Rule, subtotal int64) (int64, error) {
	var d int64
	switch rule.Type {
	case TypePercentage:
		d = subtotal * rule.Value / 100
	case TypeFixedAmount:
		d = rule.Value
	default:
		return 0, errors.Errorf("unsupported discount type: %q", rule.Type)
	}

	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d, nil
}
