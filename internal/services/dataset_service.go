package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"datadeck/internal/cleaning"
	"datadeck/internal/dataset"
	"datadeck/internal/exporter"
	"datadeck/internal/infrastructure"
	"datadeck/internal/operations"
)

// DatasetSession is one uploaded dataset and everything derived from it.
type DatasetSession struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Report     *cleaning.Report `json:"report"`
	Dataset    *dataset.Dataset `json:"-"`
	Cleaned    *dataset.Dataset `json:"-"`
	Result     *cleaning.Result `json:"result,omitempty"`
	CleanedAt  *time.Time       `json:"cleaned_at,omitempty"`
	ExportPath string           `json:"-"`
}

// CleanOutcome is returned by Clean with the operation trail.
type CleanOutcome struct {
	OperationID string                           `json:"operation_id"`
	Result      *cleaning.Result                 `json:"result"`
	Report      *cleaning.Report                 `json:"report"`
	Steps       map[string]*operations.StepState `json:"steps"`
}

// DatasetService holds uploaded datasets in memory, keyed by UUID, and runs
// the cleaning pipeline against them.
type DatasetService struct {
	mu       sync.RWMutex
	sessions map[string]*DatasetSession

	manager       *operations.Manager
	csv           *exporter.CSVWriter
	excel         *exporter.ExcelWriter
	logger        *slog.Logger
	imputeWorkers int
}

// NewDatasetService creates the service with its pipeline dependencies.
func NewDatasetService(manager *operations.Manager, csv *exporter.CSVWriter, excel *exporter.ExcelWriter, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DatasetService{
		sessions: make(map[string]*DatasetSession),
		manager:  manager,
		csv:      csv,
		excel:    excel,
		logger:   logger.With(slog.String("component", "dataset_service")),
	}
}

// SetImputeWorkers bounds the per-column imputation pool for later cleans.
// Zero keeps the cleaning package default.
func (s *DatasetService) SetImputeWorkers(n int) {
	s.imputeWorkers = n
}

// Upload parses CSV content, analyzes it and opens a session.
func (s *DatasetService) Upload(ctx context.Context, r io.Reader, name string) (*DatasetSession, error) {
	ds, err := dataset.ParseCSV(r, name)
	if err != nil {
		return nil, err
	}
	rows, _ := ds.Shape()
	if rows == 0 {
		return nil, ErrEmptyDataset
	}

	session := &DatasetSession{
		ID:         uuid.New().String(),
		Name:       name,
		UploadedAt: time.Now(),
		Dataset:    ds,
		Report:     cleaning.Analyze(ds),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", session.ID),
		slog.String("name", name),
		slog.Int("rows", rows),
		slog.Int("missing", session.Report.TotalMissing))
	return session, nil
}

// Get returns a session by ID.
func (s *DatasetService) Get(_ context.Context, id string) (*DatasetSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	return session, nil
}

// Report returns the missing-value report for a session. The report always
// describes the dataset as uploaded, not the cleaned copy.
func (s *DatasetService) Report(ctx context.Context, id string) (*cleaning.Report, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Report, nil
}

// Clean runs the analyze, impute and export steps over a session's dataset
// and records the cleaned copy. The original dataset is preserved.
func (s *DatasetService) Clean(ctx context.Context, id string, opts cleaning.Options) (*CleanOutcome, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.Workers == 0 {
		opts.Workers = s.imputeWorkers
	}

	exportName := fmt.Sprintf("cleaned_%s.csv", id[:8])
	state := operations.NewOperationState()
	state.SetContext(operations.CtxDataset, session.Dataset.Clone())
	steps := []operations.Step{
		operations.NewAnalyzeStep(),
		operations.NewImputeStep(opts),
		operations.NewExportStep(s.csv, exportName),
	}

	if err := s.manager.Run(ctx, state, steps); err != nil {
		return nil, err
	}

	result, _ := state.GetContext(operations.CtxResult)
	exportPath, _ := state.GetContext(operations.CtxExportPath)
	cleanResult := result.(*cleaning.Result)

	now := time.Now()
	s.mu.Lock()
	session.Cleaned = cleanResult.Dataset
	session.Result = cleanResult
	session.CleanedAt = &now
	session.ExportPath = exportPath.(string)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset cleaned",
		slog.String("dataset_id", id),
		slog.String("operation_id", state.ID),
		slog.String("method", string(opts.Method)),
		slog.Int("filled", cleanResult.FilledTotal),
		slog.Int("remaining_missing", cleanResult.RemainingMissing))

	return &CleanOutcome{
		OperationID: state.ID,
		Result:      cleanResult,
		Report:      cleaning.Analyze(cleanResult.Dataset),
		Steps:       state.Steps,
	}, nil
}

// Download materializes the session's current dataset (cleaned if a clean
// has run) in the requested format and returns the file path and a
// suggested filename.
func (s *DatasetService) Download(ctx context.Context, id, format string) (path, filename string, err error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}

	s.mu.RLock()
	ds := session.Cleaned
	exportPath := session.ExportPath
	s.mu.RUnlock()
	if ds == nil {
		ds = session.Dataset
	}

	switch format {
	case "", "csv":
		if exportPath != "" {
			return exportPath, fmt.Sprintf("cleaned_%s.csv", id[:8]), nil
		}
		filename = fmt.Sprintf("dataset_%s.csv", id[:8])
		path, err = s.csv.WriteSimpleCSV(filename, ds.Header, ds.Rows)
	case "xlsx":
		filename = fmt.Sprintf("dataset_%s.xlsx", id[:8])
		path, err = s.excel.WriteWorkbook(filename, ds.Header, ds.Rows)
	default:
		return "", "", fmt.Errorf("%w: %s", ErrBadFormat, format)
	}
	if err != nil {
		return "", "", err
	}
	return path, filename, nil
}

// Sample opens a session over a small built-in dataset with missing values,
// used by the web client's empty state.
func (s *DatasetService) Sample(ctx context.Context) (*DatasetSession, error) {
	header := []string{"Name", "Age", "Salary", "Department"}
	rows := [][]string{
		{"Alice", "30", "52000", "Engineering"},
		{"Bob", "", "61000", "Sales"},
		{"Carol", "41", "", "Engineering"},
		{"", "35", "58000", ""},
		{"Eve", "29", "49500", "Marketing"},
	}
	ds, err := dataset.New("sample.csv", header, rows)
	if err != nil {
		return nil, err
	}

	session := &DatasetSession{
		ID:         uuid.New().String(),
		Name:       "sample.csv",
		UploadedAt: time.Now(),
		Dataset:    ds,
		Report:     cleaning.Analyze(ds),
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "sample dataset created",
		slog.String("dataset_id", session.ID))
	return session, nil
}

// Count returns the number of open sessions.
func (s *DatasetService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
