// Package gate composes the rate limiter, session store, and archive
// indexer around the two externally visible operations: listing an uploaded
// archive and generating a Markdown document from a stored session.
package gate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/archive"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/config"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/markdown"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/models"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/ratelimit"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/session"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/pkg/logger"
)

// Request categories, each with its own quota against the shared window.
const (
	CategoryList     = "list"
	CategoryGenerate = "generate"
)

// Gate enforces rate limits, size limits, and session validity before
// invoking the archive indexer or emitting document content.
type Gate struct {
	cfg      *config.Config
	limiter  *ratelimit.Limiter
	sessions *session.Store
	logger   *logrus.Logger
}

// ListResult is the outcome of a successful list operation.
type ListResult struct {
	// Files are the archive entries in their original archive order.
	Files []archive.Entry
	// SessionID identifies the stored upload.
	SessionID string
	// ExpiresAt is the session's absolute expiry timestamp.
	ExpiresAt time.Time
}

// New creates a request gate over the given limiter and session store.
func New(cfg *config.Config, limiter *ratelimit.Limiter, sessions *session.Store, log *logrus.Logger) *Gate {
	return &Gate{
		cfg:      cfg,
		limiter:  limiter,
		sessions: sessions,
		logger:   log,
	}
}

// List validates and indexes an uploaded archive, stores a new session for
// it, and returns the normalized listing with the session identifier.
// Failures are returned as *models.ServiceError values.
func (g *Gate) List(ctx context.Context, clientKey string, payload []byte) (*ListResult, error) {
	g.sessions.Sweep(time.Now())

	if !g.limiter.Allow(clientKey+":"+CategoryList, g.cfg.RateLimit.ListMax, g.cfg.RateLimit.Window) {
		return nil, models.NewRateLimited(CategoryList)
	}

	if len(payload) == 0 {
		return nil, models.NewEmptyPayload()
	}

	if int64(len(payload)) > g.cfg.Upload.MaxArchiveBytes {
		return nil, models.NewPayloadTooLarge(g.cfg.Upload.MaxArchiveBytes)
	}

	entries, err := archive.Index(payload)
	if err != nil {
		logger.WithCorrelationID(ctx, g.logger).WithError(err).Warn("Uploaded archive could not be indexed")
		return nil, models.NewMalformedArchive(err.Error())
	}

	pathMap := make(map[string]string, len(entries))
	for _, entry := range entries {
		pathMap[entry.DisplayPath] = entry.ZipPath
	}

	id, expiresAt := g.sessions.Create(payload, pathMap, g.cfg.Upload.SessionTTL)

	logger.WithCorrelationID(ctx, g.logger).WithFields(logrus.Fields{
		"session_id": id,
		"files":      len(entries),
	}).Info("Archive indexed and session created")

	return &ListResult{Files: entries, SessionID: id, ExpiresAt: expiresAt}, nil
}

// Generate resolves the requested display paths against the session's path
// mapping and assembles the document sections in the caller-specified
// order. Failures are returned as *models.ServiceError values.
func (g *Gate) Generate(ctx context.Context, clientKey string, sessionID string, files []string) ([]markdown.Section, error) {
	g.sessions.Sweep(time.Now())

	if !g.limiter.Allow(clientKey+":"+CategoryGenerate, g.cfg.RateLimit.GenerateMax, g.cfg.RateLimit.Window) {
		return nil, models.NewRateLimited(CategoryGenerate)
	}

	if len(files) == 0 {
		return nil, models.NewEmptySelection()
	}

	sess, ok := g.sessions.Get(sessionID)
	if !ok {
		return nil, models.NewSessionNotFound()
	}

	var unknown []string
	for _, path := range files {
		if _, exists := sess.PathMap[path]; !exists {
			unknown = append(unknown, path)
		}
	}
	if len(unknown) > 0 {
		return nil, models.NewUnknownFiles(unknown)
	}

	sections := make([]markdown.Section, 0, len(files))
	for _, path := range files {
		content, err := archive.ReadEntry(sess.Archive, sess.PathMap[path])
		if err != nil {
			logger.WithCorrelationID(ctx, g.logger).WithError(err).WithField("path", path).
				Error("Failed to read archive entry during generation")
			return nil, models.NewInternalError("failed to read archive entry")
		}
		sections = append(sections, markdown.Section{Path: path, Content: content})
	}

	logger.WithCorrelationID(ctx, g.logger).WithFields(logrus.Fields{
		"session_id": sessionID,
		"files":      len(files),
	}).Info("Markdown document assembled")

	return sections, nil
}
