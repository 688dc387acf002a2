package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datadeck/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return &config.Paths{
		BaseDir:    base,
		UploadsDir: filepath.Join(base, "uploads"),
		ExportsDir: filepath.Join(base, "exports"),
	}
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	w := NewCSVWriter(testPaths(t))

	path, err := w.WriteSimpleCSV("out.csv",
		[]string{"Name", "Age"},
		[][]string{{"Bav", "28"}, {"Moena", "30"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "BOM expected")

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, "\xEF\xBB\xBF")))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Name", "Age"}, records[0])
	assert.Equal(t, []string{"Moena", "30"}, records[2])
}

func TestCSVWriter_Append(t *testing.T) {
	w := NewCSVWriter(testPaths(t))

	_, err := w.WriteCSV("log.csv", WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}})
	require.NoError(t, err)

	path, err := w.WriteCSV("log.csv", WriteOptions{Records: [][]string{{"2"}}, Append: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n2\n", string(data))
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	w := NewCSVWriter(testPaths(t))

	sw, err := w.CreateStreamWriter("stream.csv", []string{"x", "y"})
	require.NoError(t, err)

	require.NoError(t, sw.WriteRecord([]string{"1", "2"}))
	require.NoError(t, sw.WriteRecord([]string{"3", "4"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(filepath.Join(w.paths.ExportsDir, "stream.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "3,4")
}

func TestExcelWriter_WriteWorkbook(t *testing.T) {
	paths := testPaths(t)
	w := NewExcelWriter(paths)

	path, err := w.WriteWorkbook("report.xlsx",
		[]string{"Product", "Quantity"},
		[][]string{{"Phone-101", "42"}, {"Bread-202", "7"}})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Product", "Quantity"}, rows[0])
	assert.Equal(t, []string{"Bread-202", "7"}, rows[2])
}
