package inventory

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		reorder  int
		want     string
	}{
		{name: "above reorder", quantity: 50, reorder: 10, want: StatusInStock},
		{name: "equal to reorder", quantity: 10, reorder: 10, want: StatusLowStock},
		{name: "below reorder", quantity: 3, reorder: 10, want: StatusLowStock},
		{name: "zero quantity", quantity: 0, reorder: 5, want: StatusLowStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{QuantityAvailable: tt.quantity, ReorderLevel: tt.reorder}
			p.DeriveStatus()
			assert.Equal(t, tt.want, p.Status)
		})
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "P001", FormatID(1))
	assert.Equal(t, "P042", FormatID(42))
	assert.Equal(t, "P100", FormatID(100))
}

func TestFilter(t *testing.T) {
	p := Product{Category: "Electronics", Status: StatusLowStock}

	assert.True(t, Filter{}.Matches(p))
	assert.True(t, Filter{Categories: []string{"Electronics", "Sports"}}.Matches(p))
	assert.False(t, Filter{Categories: []string{"Grocery"}}.Matches(p))
	assert.True(t, Filter{Statuses: []string{StatusLowStock}}.Matches(p))
	assert.False(t, Filter{Statuses: []string{StatusInStock}}.Matches(p))
	assert.False(t, Filter{
		Categories: []string{"Electronics"},
		Statuses:   []string{StatusInStock},
	}.Matches(p))
}

func TestGenerateSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	products := GenerateSample(rng, 20, 1)
	require.Len(t, products, 20)

	assert.Equal(t, "P001", products[0].ID)
	assert.Equal(t, "P020", products[19].ID)
	for _, p := range products {
		assert.Contains(t, Categories, p.Category)
		assert.NotEmpty(t, p.Name)
		assert.GreaterOrEqual(t, p.QuantityAvailable, 0)
		assert.LessOrEqual(t, p.QuantityAvailable, 100)
		assert.GreaterOrEqual(t, p.ReorderLevel, 5)
		assert.LessOrEqual(t, p.ReorderLevel, 30)
		assert.NotEmpty(t, p.Status)
	}
}

func TestSummarize(t *testing.T) {
	products := []Product{
		{ID: "P001", Category: "Electronics", QuantityAvailable: 50, ReorderLevel: 10},
		{ID: "P002", Category: "Electronics", QuantityAvailable: 5, ReorderLevel: 10},
		{ID: "P003", Category: "Grocery", QuantityAvailable: 20, ReorderLevel: 20},
	}
	for i := range products {
		products[i].DeriveStatus()
	}

	s := Summarize(products)
	assert.Equal(t, 3, s.TotalProducts)
	assert.Equal(t, 75, s.TotalQuantity)
	assert.Equal(t, 2, s.LowStockCount)
	assert.Equal(t, 2, s.DistinctCategories)

	byCat := QuantityByCategory(products)
	require.Len(t, byCat, 2)
	assert.Equal(t, CategoryQuantity{Category: "Electronics", Quantity: 55}, byCat[0])
	assert.Equal(t, CategoryQuantity{Category: "Grocery", Quantity: 20}, byCat[1])

	low := LowStock(products)
	require.Len(t, low, 2)
	assert.Equal(t, "P002", low[0].ID)
	assert.Equal(t, "P003", low[1].ID)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
	assert.Empty(t, QuantityByCategory(nil))
	assert.Empty(t, LowStock(nil))
}

// storeUnderTest exercises the Store contract against any implementation.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	added, err := store.Add(ctx, Product{
		Name:              "Laptop",
		Category:          "Electronics",
		QuantityAvailable: 50,
		ReorderLevel:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, "P001", added.ID)
	assert.Equal(t, StatusInStock, added.Status)

	_, err = store.Add(ctx, Product{
		Name:              "Rice Bag",
		Category:          "Grocery",
		QuantityAvailable: 4,
		ReorderLevel:      15,
	})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "P001", list[0].ID)
	assert.Equal(t, "P002", list[1].ID)
	assert.Equal(t, StatusLowStock, list[1].Status)

	got, err := store.Get(ctx, "P002")
	require.NoError(t, err)
	assert.Equal(t, "Rice Bag", got.Name)

	_, err = store.Get(ctx, "P999")
	assert.ErrorIs(t, err, ErrNotFound)

	replacement := []Product{
		{Name: "Pen Set", Category: "Stationery", QuantityAvailable: 9, ReorderLevel: 20},
	}
	require.NoError(t, store.Replace(ctx, replacement))
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "P001", list[0].ID)
	assert.Equal(t, StatusLowStock, list[0].Status)

	require.NoError(t, store.Clear(ctx))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// IDs restart after a clear.
	added, err = store.Add(ctx, Product{Name: "Monitor", Category: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, "P001", added.ID)

	// ID assignment keeps counting numerically past P999.
	_, err = store.Add(ctx, Product{ID: "P999", Name: "Marker", Category: "Stationery"})
	require.NoError(t, err)
	added, err = store.Add(ctx, Product{Name: "Stapler", Category: "Stationery"})
	require.NoError(t, err)
	assert.Equal(t, "P1000", added.ID)
	added, err = store.Add(ctx, Product{Name: "Pen Set", Category: "Stationery"})
	require.NoError(t, err)
	assert.Equal(t, "P1001", added.ID)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeUnderTest(t, store)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	storeUnderTest(t, store)
}
