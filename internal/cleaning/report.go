package cleaning

import "datadeck/internal/dataset"

// ColumnReport summarises the missing-value profile of one column.
type ColumnReport struct {
	Name       string       `json:"name"`
	Kind       dataset.Kind `json:"kind"`
	Missing    int          `json:"missing"`
	NonMissing int          `json:"non_missing"`
}

// Report summarises the missing-value profile of a whole dataset.
type Report struct {
	Rows         int            `json:"rows"`
	Columns      int            `json:"columns"`
	TotalMissing int            `json:"total_missing"`
	ColumnStats  []ColumnReport `json:"column_stats"`
}

// Analyze counts missing values per column and totals them.
func Analyze(ds *dataset.Dataset) *Report {
	rows, cols := ds.Shape()
	report := &Report{
		Rows:        rows,
		Columns:     cols,
		ColumnStats: make([]ColumnReport, cols),
	}

	for _, col := range ds.Columns {
		missing := ds.MissingCount(col.Index)
		report.ColumnStats[col.Index] = ColumnReport{
			Name:       col.Name,
			Kind:       col.Kind,
			Missing:    missing,
			NonMissing: rows - missing,
		}
		report.TotalMissing += missing
	}

	return report
}
