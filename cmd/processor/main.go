// Command processor runs the ΔΔCT pipeline over a CT table file and writes
// the processing and normalized result tables as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"qpcrcli/internal/dataset"
	"qpcrcli/internal/exporter"
	"qpcrcli/internal/qpcr"
	"qpcrcli/internal/validation"
)

func main() {
	in := flag.String("in", "", "input CT table (.csv, .tsv or .xlsx)")
	out := flag.String("out", "results", "output directory for CSV files")
	replicas := flag.Int("replicas", 3, "technical replicates per sample")
	housekeeper := flag.String("housekeeper", "", "housekeeper (reference) gene name")
	samples := flag.String("samples", "", "comma-separated sample names in replicate order")
	controls := flag.String("controls", "", "comma-separated control sample names")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *in == "" {
		logger.Error("missing required -in flag")
		flag.Usage()
		os.Exit(2)
	}

	cfg := qpcr.Config{
		ReplicaCount: *replicas,
		Housekeeper:  *housekeeper,
		Samples:      splitList(*samples),
		Controls:     splitList(*controls),
	}
	if err := validation.RunConfig(cfg); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ds, err := parseInput(*in)
	if err != nil {
		logger.Error("failed to parse input", "file", *in, "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded",
		slog.String("file", *in),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("columns", len(ds.Headers)),
	)

	processor := qpcr.NewProcessor(logger)
	result, err := processor.Process(context.Background(), ds, cfg)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(logger, true)
	processingPath := filepath.Join(*out, "processing.csv")
	if err := writer.WriteProcessingFile(processingPath, result.Processing); err != nil {
		logger.Error("failed to write processing table", "error", err)
		os.Exit(1)
	}
	normalizedPath := filepath.Join(*out, "normalized.csv")
	if err := writer.WriteNormalizedFile(normalizedPath, result.Outputs); err != nil {
		logger.Error("failed to write normalized table", "error", err)
		os.Exit(1)
	}

	fmt.Printf("processed %d genes, results in %s\n", len(result.Processing), *out)
}

func parseInput(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return dataset.ParseXLSX(f, title)
	case ".tsv":
		return dataset.ParseTSV(f, title)
	default:
		return dataset.ParseAuto(f, title)
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
