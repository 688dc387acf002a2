// Package inventory implements the product catalog: the product model and
// its derived stock status, pluggable stores (in-memory and SQLite),
// sample-data generation and summary aggregations.
package inventory

import "fmt"

// Stock status values derived from quantity and reorder level.
const (
	StatusInStock  = "In Stock"
	StatusLowStock = "Low Stock"
)

// Categories is the known product category set.
var Categories = []string{"Electronics", "Clothing", "Grocery", "Stationery", "Sports"}

// Product is a single inventory item. Status is always derived, never
// stored: a product is low stock when quantity is at or below the reorder
// level.
type Product struct {
	ID                string `json:"product_id" db:"product_id"`
	Name              string `json:"name" db:"name" validate:"required,max=100"`
	Category          string `json:"category" db:"category" validate:"required,oneof=Electronics Clothing Grocery Stationery Sports"`
	QuantityAvailable int    `json:"quantity_available" db:"quantity_available" validate:"gte=0"`
	ReorderLevel      int    `json:"reorder_level" db:"reorder_level" validate:"gte=0"`
	Status            string `json:"status" db:"-"`
}

// DeriveStatus recomputes Status from quantity and reorder level.
func (p *Product) DeriveStatus() {
	if p.QuantityAvailable <= p.ReorderLevel {
		p.Status = StatusLowStock
	} else {
		p.Status = StatusInStock
	}
}

// FormatID renders a numeric ID in the catalog's P%03d form.
func FormatID(n int) string {
	return fmt.Sprintf("P%03d", n)
}

// Filter selects products by category and status. Empty slices match
// everything.
type Filter struct {
	Categories []string
	Statuses   []string
}

// Matches reports whether a product passes the filter. The product's status
// must be derived before calling.
func (f Filter) Matches(p Product) bool {
	if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, p.Status) {
		return false
	}
	return true
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

// ExportHeader is the column order used by CSV and XLSX exports.
var ExportHeader = []string{"ProductID", "Name", "Category", "QuantityAvailable", "ReorderLevel", "Status"}

// ExportRecord renders a product as an export row.
func ExportRecord(p Product) []string {
	return []string{
		p.ID,
		p.Name,
		p.Category,
		fmt.Sprintf("%d", p.QuantityAvailable),
		fmt.Sprintf("%d", p.ReorderLevel),
		p.Status,
	}
}
