package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "qpcrcli/internal/errors"
	"qpcrcli/internal/exporter"
	"qpcrcli/internal/qpcr"
	"qpcrcli/internal/services"
)

// AnalysisHandler handles dataset and analysis requests.
type AnalysisHandler struct {
	service        *services.AnalysisService
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewAnalysisHandler creates the analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/dataset", h.UploadDataset)
	r.Get("/dataset", h.GetDataset)
	r.Post("/analysis", h.RunAnalysis)
	r.Get("/analysis/results", h.GetResults)
	r.Get("/analysis/export/{table}", h.ExportTable)

	return r
}

// RunRequest is the analysis run configuration payload.
type RunRequest struct {
	ReplicaCount int      `json:"replica_count"`
	Housekeeper  string   `json:"housekeeper"`
	Samples      []string `json:"samples"`
	Controls     []string `json:"controls"`
}

// Bind implements render.Binder.
func (req *RunRequest) Bind(r *http.Request) error {
	return nil
}

// RunResponse reports a completed run.
type RunResponse struct {
	Run *services.RunInfo `json:"run"`
}

// ResultsResponse carries the full result tables.
type ResultsResponse struct {
	Run        *services.RunInfo     `json:"run"`
	Processing []qpcr.GeneProcessing `json:"processing"`
	Outputs    []qpcr.GeneOutput     `json:"outputs"`
}

// UploadDataset accepts a multipart form with a "file" field holding the CT
// table (csv, tsv or xlsx).
func (h *AnalysisHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("multipart form field \"file\" is required"))
		return
	}
	defer file.Close()

	summary, err := h.service.UploadDataset(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// GetDataset returns a summary of the currently loaded dataset.
func (h *AnalysisHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dataset()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// RunAnalysis validates the run configuration and executes the pipeline.
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	req := &RunRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("invalid request body"))
		return
	}

	info, err := h.service.Run(r.Context(), qpcr.Config{
		ReplicaCount: req.ReplicaCount,
		Housekeeper:  req.Housekeeper,
		Samples:      req.Samples,
		Controls:     req.Controls,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, &RunResponse{Run: info})
}

// GetResults returns the last successful run's result tables.
func (h *AnalysisHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	result, info, err := h.service.Results()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, &ResultsResponse{
		Run:        info,
		Processing: result.Processing,
		Outputs:    result.Outputs,
	})
}

// ExportTable streams one result table as a CSV download. The {table}
// parameter selects "processing", "foldchange" or "normalized".
func (h *AnalysisHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	result, _, err := h.service.Results()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writer := exporter.NewCSVWriter(h.logger, true)

	var write func() error
	switch table {
	case "processing":
		write = func() error { return writer.WriteProcessing(w, result.Processing) }
	case "foldchange":
		write = func() error { return writer.WriteFoldChange(w, result.Outputs) }
	case "normalized":
		write = func() error { return writer.WriteNormalized(w, result.Outputs) }
	default:
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("export table "+table))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+table+".csv")

	if err := write(); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
	}
}
