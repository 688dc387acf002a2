package inventory

import "sort"

// Summary is the dashboard headline view of the catalog.
type Summary struct {
	TotalProducts      int `json:"total_products"`
	TotalQuantity      int `json:"total_quantity"`
	LowStockCount      int `json:"low_stock_count"`
	DistinctCategories int `json:"distinct_categories"`
}

// CategoryQuantity is the total quantity held in one category.
type CategoryQuantity struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// Summarize computes headline metrics over the given products. Statuses
// must be derived before calling.
func Summarize(products []Product) Summary {
	s := Summary{TotalProducts: len(products)}
	seen := make(map[string]struct{})
	for _, p := range products {
		s.TotalQuantity += p.QuantityAvailable
		if p.Status == StatusLowStock {
			s.LowStockCount++
		}
		seen[p.Category] = struct{}{}
	}
	s.DistinctCategories = len(seen)
	return s
}

// QuantityByCategory aggregates quantity per category, ordered by
// category name.
func QuantityByCategory(products []Product) []CategoryQuantity {
	totals := make(map[string]int)
	for _, p := range products {
		totals[p.Category] += p.QuantityAvailable
	}
	out := make([]CategoryQuantity, 0, len(totals))
	for category, qty := range totals {
		out = append(out, CategoryQuantity{Category: category, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// LowStock returns the products at or below their reorder level.
func LowStock(products []Product) []Product {
	var out []Product
	for _, p := range products {
		if p.Status == StatusLowStock {
			out = append(out, p)
		}
	}
	return out
}
