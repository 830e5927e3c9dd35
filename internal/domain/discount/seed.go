package discount

import "github.com/google/uuid"

// SeedRules returns the starter discount codes.
func SeedRules() []*Rule {
	return []*Rule{
		{ID: uuid.New().String(), Code: "SUMMER10", Type: TypePercentage, Value: 10, Active: true},
		{ID: uuid.New().String(), Code: "WELCOME50", Type: TypeFixedAmount, Value: 5000, Active: true},
		{ID: uuid.New().String(), Code: "EXPIRED", Type: TypePercentage, Value: 20, Active: false},
		{ID: uuid.New().String(), Code: "IWANTINTERNSHIP", Type: TypePercentage, Value: 98, Active: true},
	}
}
