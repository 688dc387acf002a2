package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datadeck/internal/cleaning"
	"datadeck/internal/dataset"
	apierrors "datadeck/internal/errors"
	"datadeck/internal/services"
)

// DatasetServiceInterface is the service surface the dataset handler needs.
type DatasetServiceInterface interface {
	Upload(ctx context.Context, r io.Reader, name string) (*services.DatasetSession, error)
	Report(ctx context.Context, id string) (*cleaning.Report, error)
	Clean(ctx context.Context, id string, opts cleaning.Options) (*services.CleanOutcome, error)
	Download(ctx context.Context, id, format string) (path, filename string, err error)
	Sample(ctx context.Context) (*services.DatasetSession, error)
}

// DatasetHandler handles dataset upload, analysis, cleaning and download.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(service DatasetServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Post("/sample", h.Sample)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/report", h.Report)
		r.Post("/clean", h.Clean)
		r.Get("/download", h.Download)
	})

	return r
}

// uploadResponse is returned by Upload and Sample.
type uploadResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Report *cleaning.Report `json:"report"`
}

// Upload accepts a multipart CSV upload and opens a dataset session.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.New(http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE", fmt.Sprintf("Upload exceeds the %d byte limit", maxErr.Limit)))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field 'file' is required"))
		return
	}
	defer file.Close()

	session, err := h.service.Upload(r.Context(), file, header.Filename)
	if err != nil {
		mapped := h.mapDatasetError(err)
		if mapped == err {
			// Anything else at upload time is a file we could not parse.
			mapped = apierrors.NewWithDetails(http.StatusUnprocessableEntity,
				"DATASET_PARSE_FAILED", "Could not parse CSV file", err.Error())
		}
		h.errorHandler.HandleError(w, r, mapped)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, uploadResponse{ID: session.ID, Name: session.Name, Report: session.Report})
}

// Sample opens a session over the built-in demo dataset.
func (h *DatasetHandler) Sample(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Sample(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, uploadResponse{ID: session.ID, Name: session.Name, Report: session.Report})
}

// Report returns the missing-value report for a dataset.
func (h *DatasetHandler) Report(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.service.Report(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapDatasetError(err))
		return
	}
	render.JSON(w, r, report)
}

// cleanRequest is the body of POST /{id}/clean.
type cleanRequest struct {
	Method            string `json:"method"`
	ExcludeNonNumeric bool   `json:"exclude_non_numeric"`
}

// Clean runs the imputation pipeline over a dataset.
func (h *DatasetHandler) Clean(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req cleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	method, err := cleaning.ParseMethod(req.Method)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("method", err.Error()))
		return
	}

	outcome, err := h.service.Clean(r.Context(), id, cleaning.Options{
		Method:            method,
		ExcludeNonNumeric: req.ExcludeNonNumeric,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapDatasetError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "clean completed",
		slog.String("dataset_id", id),
		slog.String("operation_id", outcome.OperationID))
	render.JSON(w, r, outcome)
}

// Download streams the dataset in the requested format.
func (h *DatasetHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")

	path, filename, err := h.service.Download(r.Context(), id, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapDatasetError(err))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}

// mapDatasetError converts service sentinels to API errors.
func (h *DatasetHandler) mapDatasetError(err error) error {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		return apierrors.New(http.StatusNotFound, "DATASET_NOT_FOUND", "Dataset not found")
	case errors.Is(err, services.ErrEmptyDataset), errors.Is(err, dataset.ErrEmptyFile):
		return apierrors.ErrValidation("file", "dataset contains no data rows")
	case errors.Is(err, services.ErrBadFormat):
		return apierrors.ErrValidation("format", "format must be csv or xlsx")
	case errors.Is(err, services.ErrNoArtifact):
		return apierrors.New(http.StatusConflict, "CONFLICT", "Dataset has not been cleaned yet")
	default:
		return err
	}
}
