// Package http provides the chi HTTP handlers for the analysis service:
// dataset upload, analysis runs, result retrieval, CSV export and health.
package http
