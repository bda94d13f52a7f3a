package qpcr

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qpcrcli/internal/dataset"
)

// scenarioDataset is the GAPDH/TP53 reference dataset: 2 samples with 3
// replicas each, GAPDH at 20 then 22 cycles, TP53 flat at 25.
func scenarioDataset() *dataset.Dataset {
	cells := [][]string{
		{"GAPDH", "20.0"}, {"GAPDH", "20.0"}, {"GAPDH", "20.0"},
		{"GAPDH", "22.0"}, {"GAPDH", "22.0"}, {"GAPDH", "22.0"},
		{"TP53", "25.0"}, {"TP53", "25.0"}, {"TP53", "25.0"},
		{"TP53", "25.0"}, {"TP53", "25.0"}, {"TP53", "25.0"},
	}
	return buildDataset([]string{"Name", "Ct"}, cells)
}

func scenarioConfig() Config {
	return Config{
		ReplicaCount: 3,
		Housekeeper:  "GAPDH",
		Samples:      []string{"S1", "S2"},
		Controls:     []string{"S1"},
	}
}

func TestProcessEndToEnd(t *testing.T) {
	processor := NewProcessor(slog.Default())

	result, err := processor.Process(context.Background(), scenarioDataset(), scenarioConfig())
	require.NoError(t, err)

	t.Run("delta derivation", func(t *testing.T) {
		processing, ok := result.ProcessingFor("TP53")
		require.True(t, ok)

		assert.InDelta(t, 5.0, processing.FirstDeltaCT, 1e-12)

		summaries := processing.SummaryRows()
		require.Len(t, summaries, 2)
		assert.InDelta(t, 5.0, summaries[0].DeltaCT, 1e-12)
		assert.InDelta(t, 0.0, summaries[0].DeltaDeltaCT, 1e-12)
		assert.InDelta(t, 1.0, summaries[0].FoldChange, 1e-12)
		assert.InDelta(t, 3.0, summaries[1].DeltaCT, 1e-12)
		assert.InDelta(t, -2.0, summaries[1].DeltaDeltaCT, 1e-12)
		assert.InDelta(t, 4.0, summaries[1].FoldChange, 1e-12)
	})

	t.Run("normalization", func(t *testing.T) {
		output, ok := result.OutputFor("TP53")
		require.True(t, ok)

		assert.InDelta(t, 1.0, output.ControlAverage, 1e-12)
		require.Len(t, output.NormalizedRows, 1)
		assert.Equal(t, "S1", output.NormalizedRows[0].ControlName)
		assert.Equal(t, "S2", output.NormalizedRows[0].ObservedName)
		assert.InDelta(t, 1.0, output.NormalizedRows[0].ControlFoldChange, 1e-12)
		assert.InDelta(t, 4.0, output.NormalizedRows[0].ObservedFoldChange, 1e-12)
	})

	t.Run("housekeeper is not processed as a target", func(t *testing.T) {
		_, ok := result.ProcessingFor("GAPDH")
		assert.False(t, ok)
	})
}

func TestProcessIsIdempotent(t *testing.T) {
	processor := NewProcessor(slog.Default())
	ds := scenarioDataset()
	cfg := scenarioConfig()

	first, err := processor.Process(context.Background(), ds, cfg)
	require.NoError(t, err)
	second, err := processor.Process(context.Background(), ds, cfg)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second),
		"two runs over the same input must produce identical results")
}

func TestProcessMarkerRowsNeverSurface(t *testing.T) {
	ds := scenarioDataset()
	ds.Rows = append(ds.Rows, dataset.Row{"Name": "Sample 3", "Ct": "77.7"})

	processor := NewProcessor(slog.Default())
	result, err := processor.Process(context.Background(), ds, scenarioConfig())
	require.NoError(t, err)

	assert.NotContains(t, result.Genes.Order, "Sample 3")
	for _, processing := range result.Processing {
		assert.NotEqual(t, "Sample 3", processing.GeneName)
	}
	for _, output := range result.Outputs {
		assert.NotEqual(t, "Sample 3", output.GeneName)
	}
	// The marker row's value must not leak into any gene's measurements.
	for _, name := range result.Genes.Order {
		for _, m := range result.Genes.Genes[name].Measurements {
			assert.NotEqual(t, 77.7, m.CT)
		}
	}
}

func TestProcessFailures(t *testing.T) {
	processor := NewProcessor(slog.Default())

	t.Run("no CT column aborts with no partial result", func(t *testing.T) {
		ds := buildDataset([]string{"Name", "Comment"}, [][]string{{"GAPDH", "x"}})

		result, err := processor.Process(context.Background(), ds, scenarioConfig())
		assert.ErrorIs(t, err, ErrNoCTColumn)
		assert.Nil(t, result)
	})

	t.Run("missing housekeeper aborts with no partial result", func(t *testing.T) {
		cfg := scenarioConfig()
		cfg.Housekeeper = "ACTB"

		result, err := processor.Process(context.Background(), scenarioDataset(), cfg)
		var hkErr *HousekeeperNotFoundError
		assert.ErrorAs(t, err, &hkErr)
		assert.Nil(t, result)
	})
}
