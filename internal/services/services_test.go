package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datadeck/internal/cleaning"
	"datadeck/internal/config"
	"datadeck/internal/exporter"
	"datadeck/internal/inventory"
	"datadeck/internal/operations"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWriters(t *testing.T) (*exporter.CSVWriter, *exporter.ExcelWriter) {
	t.Helper()
	base := t.TempDir()
	paths := &config.Paths{
		BaseDir:    base,
		UploadsDir: filepath.Join(base, "uploads"),
		ExportsDir: filepath.Join(base, "exports"),
	}
	return exporter.NewCSVWriter(paths), exporter.NewExcelWriter(paths)
}

func newDatasetService(t *testing.T) *DatasetService {
	t.Helper()
	csv, excel := testWriters(t)
	manager := operations.NewManager(testLogger(), nil)
	return NewDatasetService(manager, csv, excel, testLogger())
}

const uploadCSV = "Name,Age,Salary\nAlice,30,50000\nBob,,60000\n,25,\n"

func TestDatasetServiceUpload(t *testing.T) {
	svc := newDatasetService(t)

	session, err := svc.Upload(context.Background(), strings.NewReader(uploadCSV), "people.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "people.csv", session.Name)
	assert.Equal(t, 3, session.Report.Rows)
	assert.Equal(t, 3, session.Report.TotalMissing)
	assert.Equal(t, 1, svc.Count())

	report, err := svc.Report(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Report, report)
}

func TestDatasetServiceUploadEmpty(t *testing.T) {
	svc := newDatasetService(t)

	_, err := svc.Upload(context.Background(), strings.NewReader("Name,Age\n"), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestDatasetServiceNotFound(t *testing.T) {
	svc := newDatasetService(t)

	_, err := svc.Report(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = svc.Clean(context.Background(), "nope", cleaning.Options{Method: cleaning.MethodMean})
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, _, err = svc.Download(context.Background(), "nope", "csv")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDatasetServiceClean(t *testing.T) {
	svc := newDatasetService(t)
	session, err := svc.Upload(context.Background(), strings.NewReader(uploadCSV), "people.csv")
	require.NoError(t, err)

	outcome, err := svc.Clean(context.Background(), session.ID, cleaning.Options{Method: cleaning.MethodMean})
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.OperationID)
	assert.Equal(t, 2, outcome.Result.FilledTotal)
	assert.Equal(t, 1, outcome.Result.RemainingMissing)
	assert.Equal(t, 1, outcome.Report.TotalMissing)

	// The original dataset is untouched.
	assert.Equal(t, 3, session.Report.TotalMissing)
	assert.Equal(t, "", session.Dataset.Rows[1][1])

	// Cleaned numeric cells are filled.
	require.NotNil(t, session.Cleaned)
	assert.Equal(t, "27.5", session.Cleaned.Rows[1][1])
	assert.Equal(t, "55000", session.Cleaned.Rows[2][2])
}

func TestDatasetServiceCleanModeFillsCategorical(t *testing.T) {
	svc := newDatasetService(t)
	csv := "City,Count\nOslo,1\nOslo,\n,3\n"
	session, err := svc.Upload(context.Background(), strings.NewReader(csv), "cities.csv")
	require.NoError(t, err)

	outcome, err := svc.Clean(context.Background(), session.ID, cleaning.Options{Method: cleaning.MethodMode})
	require.NoError(t, err)
	assert.Zero(t, outcome.Result.RemainingMissing)
	assert.Equal(t, "Oslo", session.Cleaned.Rows[2][0])
}

func TestDatasetServiceDownload(t *testing.T) {
	svc := newDatasetService(t)
	session, err := svc.Upload(context.Background(), strings.NewReader(uploadCSV), "people.csv")
	require.NoError(t, err)

	// CSV of the raw dataset before any clean.
	path, filename, err := svc.Download(context.Background(), session.ID, "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alice,30,50000")

	// After a clean, CSV download serves the cleaned artifact.
	_, err = svc.Clean(context.Background(), session.ID, cleaning.Options{Method: cleaning.MethodMedian})
	require.NoError(t, err)
	path, _, err = svc.Download(context.Background(), session.ID, "csv")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bob,27.5,60000")

	_, _, err = svc.Download(context.Background(), session.ID, "xlsx")
	require.NoError(t, err)

	_, _, err = svc.Download(context.Background(), session.ID, "pdf")
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestDatasetServiceSample(t *testing.T) {
	svc := newDatasetService(t)

	session, err := svc.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sample.csv", session.Name)
	assert.Greater(t, session.Report.TotalMissing, 0)
}

func newInventoryService(t *testing.T) *InventoryService {
	t.Helper()
	csv, excel := testWriters(t)
	store := inventory.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return NewInventoryService(store, csv, excel, testLogger())
}

func TestInventoryServiceAddProduct(t *testing.T) {
	svc := newInventoryService(t)

	added, err := svc.AddProduct(context.Background(), inventory.Product{
		Name:              "Laptop",
		Category:          "Electronics",
		QuantityAvailable: 8,
		ReorderLevel:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, "P001", added.ID)
	assert.Equal(t, inventory.StatusLowStock, added.Status)
}

func TestInventoryServiceAddProductInvalid(t *testing.T) {
	svc := newInventoryService(t)

	tests := []struct {
		name    string
		product inventory.Product
	}{
		{name: "missing name", product: inventory.Product{Category: "Grocery"}},
		{name: "unknown category", product: inventory.Product{Name: "Thing", Category: "Gadgets"}},
		{name: "negative quantity", product: inventory.Product{Name: "Thing", Category: "Grocery", QuantityAvailable: -1}},
		{name: "negative reorder", product: inventory.Product{Name: "Thing", Category: "Grocery", ReorderLevel: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddProduct(context.Background(), tt.product)
			assert.ErrorIs(t, err, ErrProductInvalid)
		})
	}
}

func TestInventoryServiceListAndFilter(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, inventory.Product{Name: "Laptop", Category: "Electronics", QuantityAvailable: 50, ReorderLevel: 10})
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, inventory.Product{Name: "Rice Bag", Category: "Grocery", QuantityAvailable: 4, ReorderLevel: 15})
	require.NoError(t, err)

	all, err := svc.ListProducts(ctx, inventory.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	grocery, err := svc.ListProducts(ctx, inventory.Filter{Categories: []string{"Grocery"}})
	require.NoError(t, err)
	require.Len(t, grocery, 1)
	assert.Equal(t, "Rice Bag", grocery[0].Name)

	low, err := svc.ListProducts(ctx, inventory.Filter{Statuses: []string{inventory.StatusLowStock}})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Rice Bag", low[0].Name)
}

func TestInventoryServiceSummaryAndAlerts(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, inventory.Product{Name: "Laptop", Category: "Electronics", QuantityAvailable: 50, ReorderLevel: 10})
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, inventory.Product{Name: "Rice Bag", Category: "Grocery", QuantityAvailable: 4, ReorderLevel: 15})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, inventory.Summary{TotalProducts: 2, TotalQuantity: 54, LowStockCount: 1, DistinctCategories: 2}, summary)

	byCat, err := svc.CategoryBreakdown(ctx)
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	alerts, err := svc.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Rice Bag", alerts[0].Name)
}

func TestInventoryServiceGenerateSampleAndClear(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	products, err := svc.GenerateSample(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, products, 20)

	all, err := svc.ListProducts(ctx, inventory.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 20)

	_, err = svc.GenerateSample(ctx, 0)
	assert.ErrorIs(t, err, ErrProductInvalid)

	require.NoError(t, svc.Clear(ctx))
	all, err = svc.ListProducts(ctx, inventory.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInventoryServiceExport(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	_, _, err := svc.Export(ctx, "csv")
	assert.ErrorIs(t, err, ErrNoProducts)

	_, err = svc.AddProduct(ctx, inventory.Product{Name: "Laptop", Category: "Electronics", QuantityAvailable: 50, ReorderLevel: 10})
	require.NoError(t, err)

	path, filename, err := svc.Export(ctx, "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "inventory_"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Laptop")
	assert.Contains(t, string(data), inventory.StatusInStock)

	_, _, err = svc.Export(ctx, "xlsx")
	require.NoError(t, err)

	_, _, err = svc.Export(ctx, "pdf")
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestHealthService(t *testing.T) {
	store := inventory.NewMemoryStore()
	defer store.Close()
	datasets := newDatasetService(t)
	svc := NewHealthService("1.2.3", "2026-08-01", store, datasets)

	status := svc.Health(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Zero(t, status.OpenDatasets)

	require.NoError(t, svc.Ready(context.Background()))

	info := svc.Version()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "2026-08-01", info.BuildTime)
}
