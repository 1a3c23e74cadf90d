// Package main provides the entry point for the ZIP-to-Markdown service.
// It initializes all dependencies, sets up HTTP routes with middleware,
// and starts the server with graceful shutdown support.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/config"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/gate"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/handlers"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/middleware"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/ratelimit"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/session"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/pkg/logger"
)

func main() {
	// Load .env.local file only in development (when GO_ENV is not set or set to "development")
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(".env.local"); err != nil {
			// Only log if the error is not "file not found"
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: Error loading .env.local file: %v\n", err)
			}
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info("Starting ZIP-to-Markdown Service")
	log.WithFields(logrus.Fields{
		"version":           "1.0.0",
		"port":              cfg.Server.Port,
		"host":              cfg.Server.Host,
		"max_archive_bytes": cfg.Upload.MaxArchiveBytes,
		"session_ttl":       cfg.Upload.SessionTTL.String(),
	}).Info("Service configuration loaded")

	// Initialize the session store and rate limiter
	sessions := session.NewStore(log)
	defer closeStore(sessions, log)

	limiter := ratelimit.New(cfg.RateLimit.CleanupInterval)

	// Compose the request gate over both
	requestGate := gate.New(cfg, limiter, sessions, log)

	// Set up HTTP server
	server := setupServer(cfg, requestGate, sessions, limiter, log)

	// Start and run server with graceful shutdown
	runServer(server, cfg, log)
}

func closeStore(sessions *session.Store, log *logrus.Logger) {
	if err := sessions.Close(); err != nil {
		log.WithError(err).Error("Failed to close session store")
	}
}

func setupServer(
	cfg *config.Config,
	requestGate *gate.Gate,
	sessions *session.Store,
	limiter *ratelimit.Limiter,
	log *logrus.Logger,
) *http.Server {
	// Initialize handlers
	metrics := handlers.NewMetrics(sessions, limiter)
	filesHandler := handlers.NewFilesHandler(requestGate, cfg, log, metrics)
	healthHandler := handlers.NewHealthHandler(cfg, sessions, limiter, log)

	// Initialize middleware
	middlewareStack := middleware.NewStack(cfg, log)

	// Set up routes
	router := mux.NewRouter()

	// API v1 router with /api/v1 prefix
	apiV1Router := router.PathPrefix("/api/v1").Subrouter()

	apiV1Router.HandleFunc("/list-files", filesHandler.ListFiles).Methods("POST")
	apiV1Router.HandleFunc("/generate-md", filesHandler.GenerateMarkdown).Methods("POST")

	apiV1Router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	apiV1Router.HandleFunc("/health/live", healthHandler.Liveness).Methods("GET")
	apiV1Router.HandleFunc("/health/ready", healthHandler.Readiness).Methods("GET")
	apiV1Router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Apply middleware to the entire router
	finalHandler := middlewareStack.Chain(
		router,
		middlewareStack.Recovery,
		middlewareStack.RequestLogger,
		middlewareStack.SecurityHeaders,
		middlewareStack.CORS,
		middlewareStack.ContentType,
	)

	// Create HTTP server
	return &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func runServer(server *http.Server, cfg *config.Config, log *logrus.Logger) {
	// Start server in a goroutine
	go startServer(server, log)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Create context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Error("Server forced to shutdown")
	} else {
		log.Info("Server exited gracefully")
	}
}

func startServer(server *http.Server, log *logrus.Logger) {
	log.WithField("addr", server.Addr).Info("Starting HTTP server")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Failed to start server")
	}
}
