package qpcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qpcrcli/internal/dataset"
)

func buildDataset(headers []string, cells [][]string) *dataset.Dataset {
	rows := make([]dataset.Row, 0, len(cells))
	for _, record := range cells {
		row := make(dataset.Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return &dataset.Dataset{Title: "test", Headers: headers, Rows: rows}
}

func TestDetectCTColumn(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		cells    [][]string
		expected string
		wantErr  bool
	}{
		{
			name:     "exact cp match",
			headers:  []string{"Name", "Cp"},
			cells:    [][]string{{"GAPDH", "20.1"}},
			expected: "Cp",
		},
		{
			name:     "exact ct match case insensitive",
			headers:  []string{"Name", "CT"},
			cells:    [][]string{{"GAPDH", "20.1"}},
			expected: "CT",
		},
		{
			name:     "exact cq match",
			headers:  []string{"Name", "Cq"},
			cells:    [][]string{{"GAPDH", "20.1"}},
			expected: "Cq",
		},
		{
			name:     "substring match",
			headers:  []string{"Name", "Ct Value"},
			cells:    [][]string{{"GAPDH", "20.1"}},
			expected: "Ct Value",
		},
		{
			name:     "exact match wins over substring",
			headers:  []string{"Name", "Ct Value", "cp"},
			cells:    [][]string{{"GAPDH", "20.1", "21.2"}},
			expected: "cp",
		},
		{
			name:     "numeric fallback needs decimal point",
			headers:  []string{"Name", "Pos", "Value"},
			cells:    [][]string{{"GAPDH", "3", "20.1"}},
			expected: "Value",
		},
		{
			name:    "integer-only columns are not CT data",
			headers: []string{"Name", "Pos"},
			cells:   [][]string{{"GAPDH", "3"}},
			wantErr: true,
		},
		{
			name:    "negative numbers are not CT data",
			headers: []string{"Name", "Value"},
			cells:   [][]string{{"GAPDH", "-20.1"}},
			wantErr: true,
		},
		{
			name:    "no candidate column",
			headers: []string{"Name", "Comment"},
			cells:   [][]string{{"GAPDH", "looks fine"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column, err := DetectCTColumn(buildDataset(tt.headers, tt.cells))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoCTColumn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, column)
		})
	}
}

func TestExtractGenes(t *testing.T) {
	cfg := Config{ReplicaCount: 2, Samples: []string{"S1"}}

	t.Run("groups measurements by gene in row order", func(t *testing.T) {
		ds := buildDataset([]string{"Name", "Ct"}, [][]string{
			{"GAPDH", "20.0"},
			{"TP53", "25.0"},
			{"GAPDH", "20.2"},
			{"TP53", "25.2"},
		})

		table, err := ExtractGenes(ds, cfg)
		require.NoError(t, err)

		assert.Equal(t, []string{"GAPDH", "TP53"}, table.Order)
		require.Len(t, table.Genes["GAPDH"].Measurements, 2)
		assert.Equal(t, 20.0, table.Genes["GAPDH"].Measurements[0].CT)
		assert.Equal(t, 20.2, table.Genes["GAPDH"].Measurements[1].CT)
		assert.Equal(t, 0, table.Genes["GAPDH"].Measurements[0].Row)
		assert.Equal(t, 2, table.Genes["GAPDH"].Measurements[1].Row)
	})

	t.Run("marker rows are excluded", func(t *testing.T) {
		ds := buildDataset([]string{"Name", "Ct"}, [][]string{
			{"GAPDH", "20.0"},
			{"Sample 3", "99.0"},
			{"sample2", "98.0"},
			{"SAMPLE  7", "97.0"},
			{"TP53", "25.0"},
		})

		table, err := ExtractGenes(ds, cfg)
		require.NoError(t, err)

		assert.Equal(t, []string{"GAPDH", "TP53"}, table.Order)
		for name := range table.Genes {
			assert.NotRegexp(t, `(?i)^sample\s*\d+$`, name)
		}
	})

	t.Run("unparsable CT values are skipped", func(t *testing.T) {
		ds := buildDataset([]string{"Name", "Ct"}, [][]string{
			{"GAPDH", "20.0"},
			{"GAPDH", "n/a"},
			{"GAPDH", ""},
			{"GAPDH", "20.4"},
		})

		table, err := ExtractGenes(ds, cfg)
		require.NoError(t, err)

		ms := table.Genes["GAPDH"].Measurements
		require.Len(t, ms, 2)
		assert.Equal(t, 20.0, ms[0].CT)
		assert.Equal(t, 20.4, ms[1].CT)
	})

	t.Run("missing Name column fails", func(t *testing.T) {
		ds := buildDataset([]string{"Gene", "Ct"}, [][]string{{"GAPDH", "20.0"}})
		_, err := ExtractGenes(ds, cfg)
		assert.Error(t, err)
	})

	t.Run("no CT column fails with detection error", func(t *testing.T) {
		ds := buildDataset([]string{"Name", "Comment"}, [][]string{{"GAPDH", "ok"}})
		_, err := ExtractGenes(ds, cfg)
		assert.ErrorIs(t, err, ErrNoCTColumn)
	})
}

func TestGroupIntoReplicas(t *testing.T) {
	measurements := func(values ...float64) []Measurement {
		ms := make([]Measurement, 0, len(values))
		for i, v := range values {
			ms = append(ms, Measurement{CT: v, Row: i})
		}
		return ms
	}

	t.Run("contiguous positional slices", func(t *testing.T) {
		groups := GroupIntoReplicas(measurements(1, 2, 3, 4, 5, 6), 3, []string{"S1", "S2"})

		require.Len(t, groups, 2)
		assert.Equal(t, "S1", groups[0].SampleName)
		assert.Equal(t, 1, groups[0].SampleNumber)
		assert.Equal(t, []float64{1, 2, 3}, groups[0].CTValues)
		assert.Equal(t, "S2", groups[1].SampleName)
		assert.Equal(t, 2, groups[1].SampleNumber)
		assert.Equal(t, []float64{4, 5, 6}, groups[1].CTValues)
	})

	t.Run("partial trailing group is dropped entirely", func(t *testing.T) {
		groups := GroupIntoReplicas(measurements(1, 2, 3, 4, 5), 3, []string{"S1", "S2"})

		require.Len(t, groups, 1)
		assert.Equal(t, []float64{1, 2, 3}, groups[0].CTValues)
	})

	t.Run("dropping a group drops all later samples too", func(t *testing.T) {
		groups := GroupIntoReplicas(measurements(1, 2), 2, []string{"S1", "S2", "S3"})
		require.Len(t, groups, 1)
	})

	t.Run("no measurements yields no groups", func(t *testing.T) {
		assert.Empty(t, GroupIntoReplicas(nil, 3, []string{"S1"}))
	})

	t.Run("groups cover at most the measurement sequence without overlap", func(t *testing.T) {
		ms := measurements(1, 2, 3, 4, 5, 6, 7)
		groups := GroupIntoReplicas(ms, 2, []string{"A", "B", "C", "D"})

		total := 0
		flat := []float64{}
		for _, g := range groups {
			total += len(g.CTValues)
			flat = append(flat, g.CTValues...)
		}
		assert.LessOrEqual(t, total, len(ms))
		for i, v := range flat {
			assert.Equal(t, ms[i].CT, v, "grouping must not reorder measurements")
		}
	})
}
