package operations

import (
	"context"
	"fmt"

	"datadeck/internal/cleaning"
	"datadeck/internal/dataset"
	"datadeck/internal/exporter"
)

// Step IDs in pipeline order.
const (
	StepIDLoad    = "load"
	StepIDAnalyze = "analyze"
	StepIDImpute  = "impute"
	StepIDExport  = "export"
)

// LoadStep reads a CSV file into a dataset.
type LoadStep struct {
	path string
}

// NewLoadStep creates a load step for the given CSV path.
func NewLoadStep(path string) *LoadStep {
	return &LoadStep{path: path}
}

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return "Load dataset" }

func (s *LoadStep) Validate(*OperationState) error {
	if s.path == "" {
		return fmt.Errorf("load step: no input path")
	}
	return nil
}

func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ds, err := dataset.LoadCSV(s.path)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	rows, cols := ds.Shape()
	state.SetContext(CtxDataset, ds)
	if step := state.GetStep(StepIDLoad); step != nil {
		step.SetMetadata("rows", rows)
		step.SetMetadata("columns", cols)
	}
	return nil
}

// AnalyzeStep computes the missing-value report for the loaded dataset.
type AnalyzeStep struct{}

// NewAnalyzeStep creates an analyze step.
func NewAnalyzeStep() *AnalyzeStep { return &AnalyzeStep{} }

func (s *AnalyzeStep) ID() string   { return StepIDAnalyze }
func (s *AnalyzeStep) Name() string { return "Analyze missing values" }

func (s *AnalyzeStep) Validate(state *OperationState) error {
	if _, ok := state.GetContext(CtxDataset); !ok {
		return fmt.Errorf("analyze step: no dataset loaded")
	}
	return nil
}

func (s *AnalyzeStep) Execute(ctx context.Context, state *OperationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ds := state.mustDataset()
	report := cleaning.Analyze(ds)
	state.SetContext(CtxReport, report)
	if step := state.GetStep(StepIDAnalyze); step != nil {
		step.SetMetadata("total_missing", report.TotalMissing)
	}
	return nil
}

// ImputeStep fills missing values using the configured method.
type ImputeStep struct {
	opts cleaning.Options
}

// NewImputeStep creates an impute step with the given options.
func NewImputeStep(opts cleaning.Options) *ImputeStep {
	return &ImputeStep{opts: opts}
}

func (s *ImputeStep) ID() string   { return StepIDImpute }
func (s *ImputeStep) Name() string { return "Impute missing values" }

func (s *ImputeStep) Validate(state *OperationState) error {
	if _, ok := state.GetContext(CtxDataset); !ok {
		return fmt.Errorf("impute step: no dataset loaded")
	}
	if _, err := cleaning.ParseMethod(string(s.opts.Method)); err != nil {
		return fmt.Errorf("impute step: %w", err)
	}
	return nil
}

func (s *ImputeStep) Execute(ctx context.Context, state *OperationState) error {
	ds := state.mustDataset()
	result, err := cleaning.Impute(ctx, ds, s.opts)
	if err != nil {
		return fmt.Errorf("impute: %w", err)
	}
	state.SetContext(CtxResult, result)
	state.SetContext(CtxDataset, result.Dataset)
	if step := state.GetStep(StepIDImpute); step != nil {
		step.SetMetadata("filled_total", result.FilledTotal)
		step.SetMetadata("remaining_missing", result.RemainingMissing)
	}
	return nil
}

// ExportStep writes the current dataset to a CSV file in the exports
// directory.
type ExportStep struct {
	csv      *exporter.CSVWriter
	filename string
}

// NewExportStep creates an export step writing to filename.
func NewExportStep(csv *exporter.CSVWriter, filename string) *ExportStep {
	return &ExportStep{csv: csv, filename: filename}
}

func (s *ExportStep) ID() string   { return StepIDExport }
func (s *ExportStep) Name() string { return "Export cleaned dataset" }

func (s *ExportStep) Validate(state *OperationState) error {
	if s.filename == "" {
		return fmt.Errorf("export step: no output filename")
	}
	if _, ok := state.GetContext(CtxDataset); !ok {
		return fmt.Errorf("export step: no dataset loaded")
	}
	return nil
}

func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ds := state.mustDataset()
	path, err := s.csv.WriteSimpleCSV(s.filename, ds.Header, ds.Rows)
	if err != nil {
		return fmt.Errorf("export %s: %w", s.filename, err)
	}
	state.SetContext(CtxExportPath, path)
	if step := state.GetStep(StepIDExport); step != nil {
		step.SetMetadata("path", path)
	}
	return nil
}

// mustDataset pulls the dataset from the context. Steps validate presence
// before execution, so a miss here is a pipeline wiring bug.
func (o *OperationState) mustDataset() *dataset.Dataset {
	v, ok := o.GetContext(CtxDataset)
	if !ok {
		panic("operations: dataset missing from state")
	}
	return v.(*dataset.Dataset)
}
