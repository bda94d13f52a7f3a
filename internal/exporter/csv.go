// Package exporter writes analysis result tables as CSV.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"qpcrcli/internal/qpcr"
)

var processingHeaders = []string{
	"Gene", "Sample", "Sample No", "Row Type",
	"CT", "HK CT",
	"CT Mean", "CT Std", "HK CT Mean", "HK CT Std",
	"dCT", "ddCT", "Combined Std", "SEM", "Fold Change",
}

var normalizedHeaders = []string{
	"Gene", "Control", "Control Fold Change", "Observed", "Observed Fold Change",
}

// CSVWriter streams result tables as CSV, optionally with a UTF-8 BOM so
// Excel recognizes the encoding.
type CSVWriter struct {
	logger    *slog.Logger
	bomPrefix bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(logger *slog.Logger, bomPrefix bool) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger:    logger.With(slog.String("component", "csv_exporter")),
		bomPrefix: bomPrefix,
	}
}

// WriteProcessing writes the per-gene processing tables.
func (w *CSVWriter) WriteProcessing(out io.Writer, results []qpcr.GeneProcessing) error {
	records := make([][]string, 0, len(results))
	for _, processing := range results {
		for _, row := range processing.Rows {
			records = append(records, processingRecord(processing.GeneName, row))
		}
	}
	return w.write(out, processingHeaders, records)
}

// WriteFoldChange writes the per-gene fold-change pairing tables.
func (w *CSVWriter) WriteFoldChange(out io.Writer, outputs []qpcr.GeneOutput) error {
	records := make([][]string, 0, len(outputs))
	for _, output := range outputs {
		for _, pair := range output.FoldChangeRows {
			records = append(records, pairRecord(output.GeneName, pair))
		}
	}
	return w.write(out, normalizedHeaders, records)
}

// WriteNormalized writes the per-gene normalized tables.
func (w *CSVWriter) WriteNormalized(out io.Writer, outputs []qpcr.GeneOutput) error {
	records := make([][]string, 0, len(outputs))
	for _, output := range outputs {
		for _, pair := range output.NormalizedRows {
			records = append(records, pairRecord(output.GeneName, pair))
		}
	}
	return w.write(out, normalizedHeaders, records)
}

// WriteProcessingFile writes the processing tables to a file, creating
// parent directories as needed.
func (w *CSVWriter) WriteProcessingFile(path string, results []qpcr.GeneProcessing) error {
	return w.writeFile(path, func(out io.Writer) error {
		return w.WriteProcessing(out, results)
	})
}

// WriteNormalizedFile writes the normalized tables to a file, creating
// parent directories as needed.
func (w *CSVWriter) WriteNormalizedFile(path string, outputs []qpcr.GeneOutput) error {
	return w.writeFile(path, func(out io.Writer) error {
		return w.WriteNormalized(out, outputs)
	})
}

func (w *CSVWriter) writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	w.logger.Info("writing CSV file", slog.String("path", path))
	return write(file)
}

func (w *CSVWriter) write(out io.Writer, headers []string, records [][]string) error {
	if w.bomPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func processingRecord(gene string, row qpcr.ProcessingRow) []string {
	if row.Kind == qpcr.RowReplica {
		return []string{
			gene, row.SampleName, formatInt(row.SampleNumber), string(row.Kind),
			formatFloat(row.CT), formatFloat(row.HousekeeperCT),
			"", "", "", "", "", "", "", "", "",
		}
	}
	return []string{
		gene, row.SampleName, formatInt(row.SampleNumber), string(row.Kind),
		"", "",
		formatFloat(row.CTMean), formatFloat(row.CTStd),
		formatFloat(row.HousekeeperCTMean), formatFloat(row.HousekeeperCTStd),
		formatFloat(row.DeltaCT), formatFloat(row.DeltaDeltaCT),
		formatFloat(row.CombinedStd), formatFloat(row.SEM), formatFloat(row.FoldChange),
	}
}

func pairRecord(gene string, pair qpcr.FoldChangePair) []string {
	return []string{
		gene,
		pair.ControlName, formatFloat(pair.ControlFoldChange),
		pair.ObservedName, formatFloat(pair.ObservedFoldChange),
	}
}
