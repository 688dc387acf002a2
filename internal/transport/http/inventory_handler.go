package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "datadeck/internal/errors"
	"datadeck/internal/inventory"
	"datadeck/internal/services"
)

// InventoryServiceInterface is the service surface the inventory handler needs.
type InventoryServiceInterface interface {
	AddProduct(ctx context.Context, p inventory.Product) (inventory.Product, error)
	ListProducts(ctx context.Context, filter inventory.Filter) ([]inventory.Product, error)
	Summary(ctx context.Context) (inventory.Summary, error)
	CategoryBreakdown(ctx context.Context) ([]inventory.CategoryQuantity, error)
	Alerts(ctx context.Context) ([]inventory.Product, error)
	GenerateSample(ctx context.Context, n int) ([]inventory.Product, error)
	Clear(ctx context.Context) error
	Export(ctx context.Context, format string) (path, filename string, err error)
}

// InventoryHandler handles the product catalog endpoints.
type InventoryHandler struct {
	service      InventoryServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	sampleSize   int
}

// NewInventoryHandler creates an inventory handler. sampleSize is the
// default product count for POST /sample.
func NewInventoryHandler(service InventoryServiceInterface, sampleSize int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InventoryHandler {
	return &InventoryHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "inventory_handler")),
		errorHandler: errorHandler,
		sampleSize:   sampleSize,
	}
}

// Routes returns the inventory routes.
func (h *InventoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/", h.Clear)
	r.Get("/summary", h.Summary)
	r.Get("/categories", h.Categories)
	r.Get("/alerts", h.Alerts)
	r.Post("/sample", h.Sample)
	r.Get("/export", h.Export)

	return r
}

// listResponse wraps product listings with a count.
type listResponse struct {
	Products []inventory.Product `json:"products"`
	Count    int                 `json:"count"`
}

// List returns products, optionally filtered by ?category= and ?status=.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := inventory.Filter{
		Categories: query["category"],
		Statuses:   query["status"],
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Products: products, Count: len(products)})
}

// Add validates and stores a product.
func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var p inventory.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	added, err := h.service.AddProduct(r.Context(), p)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapInventoryError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "product created",
		slog.String("product_id", added.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, added)
}

// Clear deletes every product.
func (h *InventoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Summary returns headline catalog metrics.
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Categories returns quantity totals per category.
func (h *InventoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.service.CategoryBreakdown(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, breakdown)
}

// Alerts returns the low-stock products.
func (h *InventoryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Alerts(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Products: alerts, Count: len(alerts)})
}

// Sample replaces the catalog with generated products. ?count= overrides
// the configured default.
func (h *InventoryHandler) Sample(w http.ResponseWriter, r *http.Request) {
	count := h.sampleSize
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("count", "count must be a positive integer"))
			return
		}
		count = n
	}

	products, err := h.service.GenerateSample(r.Context(), count)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapInventoryError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, listResponse{Products: products, Count: len(products)})
}

// Export streams the catalog as CSV or XLSX.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	path, filename, err := h.service.Export(r.Context(), format)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapInventoryError(err))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}

// mapInventoryError converts service sentinels to API errors.
func (h *InventoryHandler) mapInventoryError(err error) error {
	switch {
	case errors.Is(err, services.ErrProductInvalid):
		return apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Product failed validation", err.Error())
	case errors.Is(err, services.ErrNoProducts):
		return apierrors.New(http.StatusNotFound, "NOT_FOUND", "No products in inventory")
	case errors.Is(err, services.ErrBadFormat):
		return apierrors.ErrValidation("format", "format must be csv or xlsx")
	case errors.Is(err, inventory.ErrNotFound):
		return apierrors.New(http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	default:
		return err
	}
}
