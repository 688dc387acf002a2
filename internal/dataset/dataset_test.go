package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidatesShape(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		rows    [][]string
		wantErr bool
	}{
		{
			name:   "valid table",
			header: []string{"a", "b"},
			rows:   [][]string{{"1", "x"}, {"2", "y"}},
		},
		{
			name:   "no data rows",
			header: []string{"a"},
			rows:   nil,
		},
		{
			name:    "empty header",
			header:  nil,
			rows:    [][]string{{"1"}},
			wantErr: true,
		},
		{
			name:    "ragged row",
			header:  []string{"a", "b"},
			rows:    [][]string{{"1", "x"}, {"2"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := New("test.csv", tt.header, tt.rows)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			rows, cols := ds.Shape()
			assert.Equal(t, len(tt.rows), rows)
			assert.Equal(t, len(tt.header), cols)
		})
	}
}

func TestInferColumns(t *testing.T) {
	ds, err := New("types.csv",
		[]string{"Name", "Age", "Salary", "Empty", "Mixed"},
		[][]string{
			{"Bav", "28", "", "", "1"},
			{"Moena", "NA", "45000", "NaN", "x"},
			{"Kumar", "30", "50000.5", "", "2"},
		})
	require.NoError(t, err)

	assert.Equal(t, KindCategorical, ds.Columns[0].Kind)
	assert.Equal(t, KindNumeric, ds.Columns[1].Kind)
	assert.Equal(t, KindNumeric, ds.Columns[2].Kind)
	// All-missing columns stay categorical.
	assert.Equal(t, KindCategorical, ds.Columns[3].Kind)
	assert.Equal(t, KindCategorical, ds.Columns[4].Kind)

	assert.Len(t, ds.NumericColumns(), 2)
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing("  "))
	assert.True(t, IsMissing("NA"))
	assert.True(t, IsMissing("NaN"))
	assert.True(t, IsMissing("null"))
	assert.False(t, IsMissing("0"))
	assert.False(t, IsMissing("none"))
}

func TestMissingCount(t *testing.T) {
	ds, err := New("m.csv",
		[]string{"a", "b"},
		[][]string{{"1", ""}, {"NA", "y"}, {"3", "NaN"}})
	require.NoError(t, err)

	assert.Equal(t, 1, ds.MissingCount(0))
	assert.Equal(t, 2, ds.MissingCount(1))
}

func TestClone_Independent(t *testing.T) {
	ds, err := New("c.csv", []string{"a"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)

	clone := ds.Clone()
	clone.Rows[0][0] = "changed"

	assert.Equal(t, "1", ds.Rows[0][0])
	assert.Equal(t, "changed", clone.Rows[0][0])
}

func TestSetColumnValues(t *testing.T) {
	ds, err := New("s.csv", []string{"a", "b"}, [][]string{{"1", "x"}, {"2", "y"}})
	require.NoError(t, err)

	require.NoError(t, ds.SetColumnValues(1, []string{"p", "q"}))
	assert.Equal(t, []string{"p", "q"}, ds.ColumnValues(1))

	assert.Error(t, ds.SetColumnValues(0, []string{"only-one"}))
}

func TestParseCSV(t *testing.T) {
	input := "Name,Age\nBav,28\nMoena,\n"
	ds, err := ParseCSV(strings.NewReader(input), "people.csv")
	require.NoError(t, err)

	rows, cols := ds.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, KindNumeric, ds.Columns[1].Kind)
	assert.Equal(t, 1, ds.MissingCount(1))
}

func TestParseCSV_StripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFName,Age\nBav,28\n"
	ds, err := ParseCSV(strings.NewReader(input), "bom.csv")
	require.NoError(t, err)
	assert.Equal(t, "Name", ds.Header[0])
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseCSV_Ragged(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("a,b\n1\n"), "ragged.csv")
	assert.Error(t, err)
}
