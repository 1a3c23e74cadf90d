// Package handlers implements the HTTP endpoints of the service: archive
// listing, Markdown generation, health checks, and Prometheus metrics.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/config"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/constants"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/gate"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/markdown"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/middleware"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/models"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/pkg/logger"
)

const (
	// uploadFieldName is the multipart form field carrying the archive.
	uploadFieldName = "zipfile"
	// multipartOverheadBytes is slack on top of the archive ceiling for
	// multipart boundaries and headers.
	multipartOverheadBytes = 1 << 20
	// maxGenerateBodyBytes bounds the generate request body size.
	maxGenerateBodyBytes = 1 << 20
)

// FilesHandler serves the archive listing and Markdown generation endpoints.
type FilesHandler struct {
	gate    *gate.Gate
	config  *config.Config
	logger  *logrus.Logger
	metrics *Metrics
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(g *gate.Gate, cfg *config.Config, log *logrus.Logger, metrics *Metrics) *FilesHandler {
	return &FilesHandler{
		gate:    g,
		config:  cfg,
		logger:  log,
		metrics: metrics,
	}
}

// ListFiles handles POST /list-files: it accepts a multipart archive
// upload, indexes it, creates a session, and returns the listing.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	logger.WithCorrelationID(ctx, h.logger).Info("Processing archive listing request")

	// Bound the request body; the gate enforces the exact archive ceiling.
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxArchiveBytes+multipartOverheadBytes)

	file, _, err := r.FormFile(uploadFieldName)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeServiceError(w, r, "list", start, models.NewPayloadTooLarge(h.config.Upload.MaxArchiveBytes))
			return
		}
		h.writeServiceError(w, r, "list", start, models.NewEmptyPayload())
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeServiceError(w, r, "list", start, models.NewPayloadTooLarge(h.config.Upload.MaxArchiveBytes))
			return
		}
		logger.WithCorrelationID(ctx, h.logger).WithError(err).Error("Failed to read uploaded archive")
		h.writeServiceError(w, r, "list", start, models.NewInternalError("failed to read uploaded archive"))
		return
	}

	result, err := h.gate.List(ctx, middleware.ClientKey(r), payload)
	if err != nil {
		h.writeServiceError(w, r, "list", start, err)
		return
	}

	files := make([]models.FileEntry, 0, len(result.Files))
	for _, entry := range result.Files {
		files = append(files, models.FileEntry{Path: entry.DisplayPath})
	}

	h.writeJSONResponse(w, "list", start, &models.ListFilesResponse{
		Files:     files,
		SessionID: result.SessionID,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// GenerateMarkdown handles POST /generate-md: it resolves the requested
// display paths against a stored session and streams the assembled Markdown
// document as a download. The document is staged in a temporary file that
// is removed on every exit path.
func (h *FilesHandler) GenerateMarkdown(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	logger.WithCorrelationID(ctx, h.logger).Info("Processing markdown generation request")

	var req models.GenerateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxGenerateBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeServiceError(w, r, "generate", start, &models.ServiceError{
			Code:        "invalid_request",
			Description: "request body is not valid JSON",
			StatusCode:  http.StatusBadRequest,
		})
		return
	}

	sections, err := h.gate.Generate(ctx, middleware.ClientKey(r), req.SessionID, req.Files)
	if err != nil {
		h.writeServiceError(w, r, "generate", start, err)
		return
	}

	tmp, err := os.CreateTemp("", "ziplens-*.md")
	if err != nil {
		logger.WithCorrelationID(ctx, h.logger).WithError(err).Error("Failed to create temporary document file")
		h.writeServiceError(w, r, "generate", start, models.NewInternalError("failed to stage document"))
		return
	}
	defer func() {
		tmp.Close()
		if removeErr := os.Remove(tmp.Name()); removeErr != nil {
			logger.WithCorrelationID(ctx, h.logger).WithError(removeErr).Warn("Failed to remove temporary document file")
		}
	}()

	if err := markdown.WriteDocument(tmp, sections); err != nil {
		logger.WithCorrelationID(ctx, h.logger).WithError(err).Error("Failed to write document")
		h.writeServiceError(w, r, "generate", start, models.NewInternalError("failed to write document"))
		return
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		logger.WithCorrelationID(ctx, h.logger).WithError(err).Error("Failed to rewind temporary document file")
		h.writeServiceError(w, r, "generate", start, models.NewInternalError("failed to stage document"))
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeMarkdown)
	w.Header().Set(constants.HeaderContentDisposition, `attachment; filename=`+markdown.OutputFilename)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, tmp); err != nil {
		// The caller likely disconnected mid-download; the deferred cleanup
		// still reclaims the temporary file.
		logger.WithCorrelationID(ctx, h.logger).WithError(err).Warn("Failed to stream document to client")
	}

	h.recordRequest("generate", http.StatusOK, start)
}

// writeJSONResponse writes a successful JSON response.
func (h *FilesHandler) writeJSONResponse(w http.ResponseWriter, operation string, start time.Time, body interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}

	h.recordRequest(operation, http.StatusOK, start)
}

// writeServiceError maps an error onto the wire as a category-tagged JSON
// failure. Errors outside the service taxonomy become internal_error.
func (h *FilesHandler) writeServiceError(w http.ResponseWriter, r *http.Request, operation string, start time.Time, err error) {
	svcErr, ok := models.AsServiceError(err)
	if !ok {
		logger.WithCorrelationID(r.Context(), h.logger).WithError(err).Error("Unexpected internal failure")
		svcErr = models.NewInternalError("An unexpected error occurred")
	}

	if svcErr.Code == "rate_limited" && h.metrics != nil {
		h.metrics.RateLimitRejections.WithLabelValues(operation).Inc()
	}

	logger.WithCorrelationID(r.Context(), h.logger).WithFields(logrus.Fields{
		"operation": operation,
		"code":      svcErr.Code,
		"status":    svcErr.StatusCode,
	}).Warn("Request rejected")

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(svcErr.StatusCode)

	if encodeErr := json.NewEncoder(w).Encode(svcErr); encodeErr != nil {
		h.logger.WithError(encodeErr).Error("Failed to encode error response")
	}

	h.recordRequest(operation, svcErr.StatusCode, start)
}

// recordRequest updates the request metrics for one completed operation.
func (h *FilesHandler) recordRequest(operation string, status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.HTTPRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	h.metrics.HTTPRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
