package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"datadeck/internal/exporter"
	"datadeck/internal/infrastructure"
	"datadeck/internal/inventory"
)

// InventoryService wraps the product store with validation, sample-data
// generation, summaries and export.
type InventoryService struct {
	store    inventory.Store
	validate *validator.Validate
	csv      *exporter.CSVWriter
	excel    *exporter.ExcelWriter
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewInventoryService creates the service around a store.
func NewInventoryService(store inventory.Store, csv *exporter.CSVWriter, excel *exporter.ExcelWriter, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &InventoryService{
		store:    store,
		validate: validator.New(),
		csv:      csv,
		excel:    excel,
		logger:   logger.With(slog.String("component", "inventory_service")),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddProduct validates and stores a product. The returned product carries
// its assigned ID and derived status.
func (s *InventoryService) AddProduct(ctx context.Context, p inventory.Product) (inventory.Product, error) {
	if err := s.validate.Struct(p); err != nil {
		return inventory.Product{}, fmt.Errorf("%w: %v", ErrProductInvalid, err)
	}
	added, err := s.store.Add(ctx, p)
	if err != nil {
		return inventory.Product{}, err
	}
	s.logger.InfoContext(ctx, "product added",
		slog.String("product_id", added.ID),
		slog.String("category", added.Category),
		slog.String("status", added.Status))
	return added, nil
}

// ListProducts returns products matching the filter, ordered by ID.
func (s *InventoryService) ListProducts(ctx context.Context, filter inventory.Filter) ([]inventory.Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(filter.Categories) == 0 && len(filter.Statuses) == 0 {
		return products, nil
	}
	filtered := make([]inventory.Product, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Summary computes headline metrics over the whole catalog.
func (s *InventoryService) Summary(ctx context.Context) (inventory.Summary, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return inventory.Summary{}, err
	}
	return inventory.Summarize(products), nil
}

// CategoryBreakdown aggregates quantity per category.
func (s *InventoryService) CategoryBreakdown(ctx context.Context) ([]inventory.CategoryQuantity, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.QuantityByCategory(products), nil
}

// Alerts returns products at or below their reorder level.
func (s *InventoryService) Alerts(ctx context.Context) ([]inventory.Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.LowStock(products), nil
}

// GenerateSample replaces the catalog with n randomly generated products.
func (s *InventoryService) GenerateSample(ctx context.Context, n int) ([]inventory.Product, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample count must be positive", ErrProductInvalid)
	}

	s.mu.Lock()
	products := inventory.GenerateSample(s.rng, n, 1)
	s.mu.Unlock()

	if err := s.store.Replace(ctx, products); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "sample inventory generated", slog.Int("count", n))
	return products, nil
}

// Clear removes every product.
func (s *InventoryService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "inventory cleared")
	return nil
}

// Export writes the catalog in the requested format and returns the file
// path and suggested filename.
func (s *InventoryService) Export(ctx context.Context, format string) (path, filename string, err error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return "", "", err
	}
	if len(products) == 0 {
		return "", "", ErrNoProducts
	}

	records := make([][]string, 0, len(products))
	for _, p := range products {
		records = append(records, inventory.ExportRecord(p))
	}

	stamp := time.Now().Format("20060102_150405")
	switch format {
	case "", "csv":
		filename = fmt.Sprintf("inventory_%s.csv", stamp)
		path, err = s.csv.WriteSimpleCSV(filename, inventory.ExportHeader, records)
	case "xlsx":
		filename = fmt.Sprintf("inventory_%s.xlsx", stamp)
		path, err = s.excel.WriteWorkbook(filename, inventory.ExportHeader, records)
	default:
		return "", "", fmt.Errorf("%w: %s", ErrBadFormat, format)
	}
	if err != nil {
		return "", "", err
	}
	s.logger.InfoContext(ctx, "inventory exported",
		slog.String("path", path),
		slog.Int("products", len(products)))
	return path, filename, nil
}
