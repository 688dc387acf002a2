package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"datadeck/internal/dataset"
)

// Method selects the statistic used to fill missing cells.
type Method string

const (
	MethodMean   Method = "mean"
	MethodMedian Method = "median"
	MethodMode   Method = "mode"
)

// ParseMethod validates a user-supplied method name.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodMean:
		return MethodMean, nil
	case MethodMedian:
		return MethodMedian, nil
	case MethodMode:
		return MethodMode, nil
	default:
		return "", fmt.Errorf("unknown imputation method %q (expected mean, median or mode)", s)
	}
}

// Options configures an imputation run.
type Options struct {
	Method Method `json:"method" validate:"required,oneof=mean median mode"`
	// ExcludeNonNumeric restricts filling to numeric columns even under the
	// mode method.
	ExcludeNonNumeric bool `json:"exclude_non_numeric"`
	// Workers bounds the per-column worker pool. Zero means a small default.
	Workers int `json:"-"`
}

const defaultWorkers = 4

// Result holds the outcome of an imputation run. Dataset is a filled clone
// of the input; the input itself is never mutated.
type Result struct {
	Dataset          *dataset.Dataset `json:"-"`
	Filled           map[string]int   `json:"filled"`
	FilledTotal      int              `json:"filled_total"`
	RemainingMissing int              `json:"remaining_missing"`
}

// Impute fills missing cells per column using the selected statistic.
//
// Mean and median apply only to numeric columns; mode applies to any column
// unless ExcludeNonNumeric is set. Columns whose statistic cannot be
// computed (no observed values, or a non-numeric column under mean/median)
// are left untouched and their cells count toward RemainingMissing.
// Previously non-missing cells are never rewritten.
func Impute(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if _, err := ParseMethod(string(opts.Method)); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	out := ds.Clone()
	result := &Result{
		Dataset: out,
		Filled:  make(map[string]int, len(out.Columns)),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, col := range out.Columns {
		col := col
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			filled, err := imputeColumn(out, col, opts)
			if err != nil {
				return fmt.Errorf("column %q: %w", col.Name, err)
			}
			if filled > 0 {
				mu.Lock()
				result.Filled[col.Name] = filled
				result.FilledTotal += filled
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, col := range out.Columns {
		result.RemainingMissing += out.MissingCount(col.Index)
	}

	slog.Debug("imputation finished",
		slog.String("dataset", ds.Name),
		slog.String("method", string(opts.Method)),
		slog.Int("filled", result.FilledTotal),
		slog.Int("remaining", result.RemainingMissing))

	return result, nil
}

// imputeColumn fills one column in place and returns the number of cells
// filled. Columns the method cannot serve are skipped, not failed: the
// caller reports them through RemainingMissing.
func imputeColumn(ds *dataset.Dataset, col dataset.Column, opts Options) (int, error) {
	if ds.MissingCount(col.Index) == 0 {
		return 0, nil
	}
	if opts.ExcludeNonNumeric && col.Kind != dataset.KindNumeric {
		return 0, nil
	}

	values := ds.ColumnValues(col.Index)

	fill, ok := fillValue(values, col, opts.Method)
	if !ok {
		return 0, nil
	}

	filled := 0
	for i, v := range values {
		if dataset.IsMissing(v) {
			values[i] = fill
			filled++
		}
	}

	if err := ds.SetColumnValues(col.Index, values); err != nil {
		return 0, err
	}
	return filled, nil
}

// fillValue computes the replacement value for a column, reporting false
// when the statistic is not computable.
func fillValue(values []string, col dataset.Column, method Method) (string, bool) {
	switch method {
	case MethodMean, MethodMedian:
		if col.Kind != dataset.KindNumeric {
			return "", false
		}
		nums := observedNumbers(values)
		if len(nums) == 0 {
			return "", false
		}
		stat := Mean(nums)
		if method == MethodMedian {
			stat = Median(nums)
		}
		return strconv.FormatFloat(stat, 'f', -1, 64), true

	case MethodMode:
		observed := observedValues(values)
		return Mode(observed)

	default:
		return "", false
	}
}

// observedNumbers parses the non-missing cells of a numeric column.
func observedNumbers(values []string) []float64 {
	var nums []float64
	for _, v := range values {
		if dataset.IsMissing(v) {
			continue
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			nums = append(nums, n)
		}
	}
	return nums
}

// observedValues returns the non-missing cells in row order.
func observedValues(values []string) []string {
	var out []string
	for _, v := range values {
		if !dataset.IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}
