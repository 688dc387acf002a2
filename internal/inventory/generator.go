package inventory

import "math/rand"

// Sample product names paired round-robin with categories by the generator.
var sampleNames = []string{
	"Laptop", "T-Shirt", "Rice Bag", "Notebook", "Football",
	"Headphones", "Jeans", "Cooking Oil", "Pen Set", "Cricket Bat",
	"Smartphone", "Jacket", "Wheat Flour", "Stapler", "Tennis Ball",
	"Monitor", "Sneakers", "Sugar Pack", "Marker", "Yoga Mat",
}

const (
	sampleQuantityMax = 100
	sampleReorderMin  = 5
	sampleReorderMax  = 30
)

// GenerateSample produces n sample products with sequential IDs starting at
// startID. Names and categories cycle through the fixed lists; quantities
// and reorder levels are drawn from rng.
func GenerateSample(rng *rand.Rand, n, startID int) []Product {
	products := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		p := Product{
			ID:                FormatID(startID + i),
			Name:              sampleNames[i%len(sampleNames)],
			Category:          Categories[i%len(Categories)],
			QuantityAvailable: rng.Intn(sampleQuantityMax + 1),
			ReorderLevel:      sampleReorderMin + rng.Intn(sampleReorderMax-sampleReorderMin+1),
		}
		p.DeriveStatus()
		products = append(products, p)
	}
	return products
}
