// Package services coordinates dataset uploads and analysis runs between
// the HTTP boundary and the qpcr pipeline.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"qpcrcli/internal/dataset"
	apierrors "qpcrcli/internal/errors"
	"qpcrcli/internal/metrics"
	"qpcrcli/internal/qpcr"
	"qpcrcli/internal/validation"
)

// DatasetSummary describes the currently loaded dataset.
type DatasetSummary struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    int      `json:"rows"`
	Genes   []string `json:"genes"`
}

// RunInfo summarizes one completed analysis run.
type RunInfo struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Genes          int           `json:"genes"`
	ProcessedGenes int           `json:"processed_genes"`
}

// AnalysisService owns the loaded dataset and the last successful result
// set. A failed run never replaces previous results; callers either see the
// last good results or none.
type AnalysisService struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	processor *qpcr.Processor
	metrics   *metrics.Metrics

	datasetName string
	data        *dataset.Dataset
	result      *qpcr.Result
	lastRun     *RunInfo
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(logger *slog.Logger, m *metrics.Metrics) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger:    logger.With(slog.String("component", "analysis_service")),
		processor: qpcr.NewProcessor(logger),
		metrics:   m,
	}
}

// UploadDataset parses an uploaded CT table and makes it the current
// dataset. The format is chosen by file extension: .xlsx via the workbook
// reader, .tsv as tab-separated, anything else by delimiter sniffing.
// Loading a new dataset clears previous results since they no longer
// describe the current data.
func (s *AnalysisService) UploadDataset(ctx context.Context, name string, r io.Reader) (*DatasetSummary, error) {
	title := strings.TrimSuffix(name, filepath.Ext(name))

	var (
		ds  *dataset.Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		ds, err = dataset.ParseXLSX(r, title)
	case ".tsv":
		ds, err = dataset.ParseTSV(r, title)
	default:
		ds, err = dataset.ParseAuto(r, title)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.ParseFailures.Inc()
		}
		return nil, apierrors.NewParsingError(fmt.Sprintf("parse dataset %q", name), err)
	}

	if !ds.HasHeader(qpcr.NameColumn) {
		if s.metrics != nil {
			s.metrics.ParseFailures.Inc()
		}
		return nil, apierrors.NewParsingError(
			fmt.Sprintf("dataset %q has no %q column", name, qpcr.NameColumn), nil)
	}

	s.mu.Lock()
	s.datasetName = name
	s.data = ds
	s.result = nil
	s.lastRun = nil
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.DatasetRows.Set(float64(len(ds.Rows)))
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("name", name),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("columns", len(ds.Headers)),
	)

	return s.summarize(ds, name), nil
}

// Run validates cfg and executes the full pipeline against the current
// dataset. On success the stored result set is swapped atomically; on
// failure the previous results are preserved and the typed error returned.
func (s *AnalysisService) Run(ctx context.Context, cfg qpcr.Config) (*RunInfo, error) {
	if err := validation.RunConfig(cfg); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ds := s.data
	s.mu.RUnlock()
	if ds == nil {
		return nil, apierrors.NewNotFoundError("dataset")
	}

	start := time.Now()
	result, err := s.processor.Process(ctx, ds, cfg)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RunsTotal.WithLabelValues("error").Inc()
		}
		return nil, s.classifyRunError(err)
	}

	info := &RunInfo{
		ID:             uuid.New().String(),
		StartedAt:      start,
		Duration:       time.Since(start),
		Genes:          len(result.Genes.Order),
		ProcessedGenes: len(result.Processing),
	}

	s.mu.Lock()
	s.result = result
	s.lastRun = info
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RunsTotal.WithLabelValues("success").Inc()
		s.metrics.RunDuration.Observe(info.Duration.Seconds())
	}

	return info, nil
}

// Results returns the last successful result set, or a not-found error when
// no run has completed against the current dataset.
func (s *AnalysisService) Results() (*qpcr.Result, *RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, nil, apierrors.NewNotFoundError("analysis results")
	}
	return s.result, s.lastRun, nil
}

// Dataset returns a summary of the currently loaded dataset.
func (s *AnalysisService) Dataset() (*DatasetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, apierrors.NewNotFoundError("dataset")
	}
	return s.summarize(s.data, s.datasetName), nil
}

func (s *AnalysisService) summarize(ds *dataset.Dataset, name string) *DatasetSummary {
	genes := []string{}
	// Gene names are informational here; detection errors surface on Run.
	if table, err := qpcr.ExtractGenes(ds, qpcr.Config{ReplicaCount: 1}); err == nil {
		genes = table.Order
	}

	return &DatasetSummary{
		Name:    name,
		Title:   ds.Title,
		Headers: ds.Headers,
		Rows:    len(ds.Rows),
		Genes:   genes,
	}
}

func (s *AnalysisService) classifyRunError(err error) error {
	var hkErr *qpcr.HousekeeperNotFoundError
	if errors.As(err, &hkErr) {
		return apierrors.NewLookupError(hkErr.Error(), err).WithContext("gene", hkErr.Gene)
	}
	if errors.Is(err, qpcr.ErrNoCTColumn) {
		return apierrors.NewDetectionError("no CT value column detected in dataset", err)
	}
	return apierrors.NewAppError(apierrors.ErrTypeInternal, "analysis run failed", err)
}
