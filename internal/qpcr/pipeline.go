package qpcr

import (
	"context"
	"log/slog"
	"time"

	"qpcrcli/internal/dataset"
)

// Result is the complete output of one pipeline run. Processing and Outputs
// are ordered by gene first appearance in the source rows.
type Result struct {
	Genes      GeneTable        `json:"genes"`
	Processing []GeneProcessing `json:"processing"`
	Outputs    []GeneOutput     `json:"outputs"`
}

// ProcessingFor returns the processing table for one gene, if present.
func (r *Result) ProcessingFor(gene string) (GeneProcessing, bool) {
	for _, p := range r.Processing {
		if p.GeneName == gene {
			return p, true
		}
	}
	return GeneProcessing{}, false
}

// OutputFor returns the output table for one gene, if present.
func (r *Result) OutputFor(gene string) (GeneOutput, bool) {
	for _, o := range r.Outputs {
		if o.GeneName == gene {
			return o, true
		}
	}
	return GeneOutput{}, false
}

// Processor runs the full ΔΔCT pipeline. It holds no run state; every call
// to Process recomputes all three stages from scratch.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a pipeline processor.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger.With(slog.String("component", "qpcr_processor"))}
}

// Process runs grouping, delta calculation and normalization over the
// dataset with the given configuration. On error no partial result is
// returned. The context carries logging metadata only; the pipeline is
// synchronous and runs to completion.
func (p *Processor) Process(ctx context.Context, ds *dataset.Dataset, cfg Config) (*Result, error) {
	start := time.Now()

	p.logger.InfoContext(ctx, "starting analysis run",
		slog.String("dataset", ds.Title),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("replica_count", cfg.ReplicaCount),
		slog.String("housekeeper", cfg.Housekeeper),
		slog.Int("samples", len(cfg.Samples)),
		slog.Int("controls", len(cfg.Controls)),
	)

	genes, err := ExtractGenes(ds, cfg)
	if err != nil {
		p.logger.ErrorContext(ctx, "gene extraction failed", slog.String("error", err.Error()))
		return nil, err
	}

	processing, err := ProcessAllGenes(genes, cfg)
	if err != nil {
		p.logger.ErrorContext(ctx, "delta calculation failed", slog.String("error", err.Error()))
		return nil, err
	}

	outputs := GenerateOutputs(processing, cfg)

	p.logger.InfoContext(ctx, "analysis run complete",
		slog.Int("genes", len(genes.Order)),
		slog.Int("processed_genes", len(processing)),
		slog.Duration("duration", time.Since(start)),
	)

	return &Result{Genes: genes, Processing: processing, Outputs: outputs}, nil
}
