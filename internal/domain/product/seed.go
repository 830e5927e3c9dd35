package product

import "github.com/google/uuid"

// SeedCatalog returns the starter menu used to bootstrap an empty
// installation. Prices are in satang.
func SeedCatalog() []*Product {
	names := []struct {
		name  string
		price int64
	}{
		{"Pad Thai", 8000},
		{"Tom Yum Kung", 15000},
		{"Green Curry", 12000},
		{"Coke Zero", 2500},
		{"Mango Sticky Rice", 9000},
	}
	catalog := make([]*Product, 0, len(names))
	for _, n := range names {
		catalog = append(catalog, &Product{
			ID:     uuid.New().String(),
			Name:   n.name,
			Price:  n.price,
			Active: true,
		})
	}
	return catalog
}
