package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// utf8BOM is stripped from the first header cell when present. Excel adds
// it to CSV files it saves.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyFile is returned when the input contains no rows at all.
var ErrEmptyFile = errors.New("dataset: file contains no rows")

// ParseCSV reads a delimited file into a Dataset. The first record is the
// header row; every following record must have the same number of fields.
func ParseCSV(r io.Reader, name string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	ds, err := New(name, records[0], records[1:])
	if err != nil {
		return nil, err
	}

	rows, cols := ds.Shape()
	slog.Debug("parsed dataset",
		slog.String("name", name),
		slog.Int("rows", rows),
		slog.Int("columns", cols))

	return ds, nil
}

// LoadCSV opens and parses a CSV file from disk. The dataset name is the
// file's base name.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f, filepath.Base(path))
}
