package qpcr

import "github.com/samber/lo"

// BuildFoldChangeTable pairs control samples against observed (non-control)
// samples by position. Observed samples are allSamples minus controls in
// their original order, truncated to the control count; each table row then
// holds controls[i] against observed[i]. A side with no sample at that index
// gets an empty name and fold change 0, and a sample without a summary row
// in the processing result gets fold change 0.
func BuildFoldChangeTable(processing GeneProcessing, controls, allSamples []string) []FoldChangePair {
	observed := lo.Without(allSamples, controls...)
	if len(observed) > len(controls) {
		observed = observed[:len(controls)]
	}

	foldChanges := make(map[string]float64)
	for _, row := range processing.SummaryRows() {
		foldChanges[row.SampleName] = row.FoldChange
	}

	n := len(controls)
	if len(observed) > n {
		n = len(observed)
	}

	rows := make([]FoldChangePair, 0, n)
	for i := 0; i < n; i++ {
		var pair FoldChangePair
		if i < len(controls) {
			pair.ControlName = controls[i]
			pair.ControlFoldChange = foldChanges[controls[i]]
		}
		if i < len(observed) {
			pair.ObservedName = observed[i]
			pair.ObservedFoldChange = foldChanges[observed[i]]
		}
		rows = append(rows, pair)
	}
	return rows
}

// CalculateControlAverage returns the mean control fold change over rows
// that name a control and carry a positive fold change. With no qualifying
// rows it returns 1, which also neutralizes the downstream division.
func CalculateControlAverage(rows []FoldChangePair) float64 {
	var sum float64
	var count int
	for _, row := range rows {
		if row.ControlName != "" && row.ControlFoldChange > 0 {
			sum += row.ControlFoldChange
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return sum / float64(count)
}

// BuildNormalizedTable divides every fold change by the control average.
// A zero average is substituted with 1 to avoid division by zero.
func BuildNormalizedTable(rows []FoldChangePair, controlAverage float64) []FoldChangePair {
	if controlAverage == 0 {
		controlAverage = 1
	}
	normalized := make([]FoldChangePair, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, FoldChangePair{
			ControlName:        row.ControlName,
			ControlFoldChange:  row.ControlFoldChange / controlAverage,
			ObservedName:       row.ObservedName,
			ObservedFoldChange: row.ObservedFoldChange / controlAverage,
		})
	}
	return normalized
}

// GenerateGeneOutput composes the fold-change table, control average and
// normalized table for one gene. The reported control average is rounded to
// 4 decimals for display; normalization uses the unrounded value.
func GenerateGeneOutput(processing GeneProcessing, controls, allSamples []string) GeneOutput {
	foldChangeRows := BuildFoldChangeTable(processing, controls, allSamples)
	controlAverage := CalculateControlAverage(foldChangeRows)

	return GeneOutput{
		GeneName:       processing.GeneName,
		FoldChangeRows: foldChangeRows,
		ControlAverage: Round4(controlAverage),
		NormalizedRows: BuildNormalizedTable(foldChangeRows, controlAverage),
	}
}

// GenerateOutputs produces the output table for every processed gene,
// preserving gene order.
func GenerateOutputs(results []GeneProcessing, cfg Config) []GeneOutput {
	outputs := make([]GeneOutput, 0, len(results))
	for _, processing := range results {
		outputs = append(outputs, GenerateGeneOutput(processing, cfg.Controls, cfg.Samples))
	}
	return outputs
}
