package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/blog/internal"
	"github.com/DukeRupert/blog/internal/email"
	"github.com/DukeRupert/blog/internal/handler"
	"github.com/DukeRupert/blog/internal/jobs"
	"github.com/DukeRupert/blog/internal/markdown"
	"github.com/DukeRupert/blog/internal/metrics"
	"github.com/DukeRupert/blog/internal/middleware"
	"github.com/DukeRupert/blog/internal/repository"
	"github.com/DukeRupert/blog/internal/service"
	"github.com/DukeRupert/blog/internal/storage"
	"github.com/DukeRupert/blog/internal/worker"
	"github.com/DukeRupert/blog/web"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admin login attempts allowed per client IP before lockout
const (
	adminMaxAttempts = 5
	adminLockout     = 15 * time.Minute
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	store := repository.NewStore(db)

	// Initialize storage
	files, err := storage.New(cfg.StorageProvider,
		storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		},
		storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize background worker
	workerConfig := worker.DefaultConfig()
	workerConfig.Concurrency = cfg.WorkerConcurrency
	workerConfig.PollInterval = cfg.WorkerPollInterval
	jobWorker, err := worker.New(store, workerConfig, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	jobWorker.Register(jobs.NewPurgeFilesHandler(files, logger))

	// TEMPLATE_DIR overrides the embedded templates so they can be edited
	// without rebuilding.
	var templates fs.FS = web.Templates()
	if cfg.TemplateDir != "" {
		templates = os.DirFS(cfg.TemplateDir)
	}

	// Comment notifications
	var commentOpts []service.CommentOption
	if cfg.NotificationsEnabled() {
		emailService, err := email.NewSMTPEmailService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SiteTitle,
		}, cfg.BaseURL, templates, logger)
		if err != nil {
			return fmt.Errorf("email service initialization failed: %w", err)
		}
		jobWorker.Register(jobs.NewNotifyCommentHandler(emailService, cfg.NotifyEmail, logger))
		commentOpts = append(commentOpts, service.WithCommentNotifications())
		logger.Info("Comment notifications enabled", "to", cfg.NotifyEmail)
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	jobWorker.Start(workerCtx)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templates,
		Logger: logger,
		IsDev:  cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize services
	md := markdown.NewRenderer()
	postService := service.NewPostService(store, md, files, logger)
	taxonomyService := service.NewTaxonomyService(store, logger)
	commentService := service.NewCommentService(store, logger, commentOpts...)
	coverService := service.NewCoverService(store, files, service.NewImagingProcessor(), logger)

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()

	commentLimiter := middleware.NewRateLimiter(cfg.CommentRateLimit, cfg.CommentRateWindow, logger)
	defer commentLimiter.Stop()
	commentLimit := middleware.NewRateLimitMiddleware(commentLimiter, "comments", logger)
	commentLimit.OnLimited = func(*http.Request) {
		metrics.CommentRejected("rate_limit")
	}

	// Initialize handlers
	blogHandler := handler.NewBlogHandler(postService, taxonomyService, commentService, renderer, handler.BlogConfig{
		SiteTitle:     cfg.SiteTitle,
		PostsPerPage:  cfg.PostsPerPage,
		RecentPosts:   cfg.RecentPosts,
		SecureCookies: isSecure,
	}, logger)

	codeStyle, err := handler.CodeStyleHandler(md)
	if err != nil {
		return fmt.Errorf("code style initialization failed: %w", err)
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/css/chroma.css", codeStyle)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Uploaded covers, when served by this process
	if cfg.StorageProvider == storage.ProviderLocal || cfg.StorageProvider == "" {
		handler.NewFileHandler(files, logger).RegisterRoutes(mux)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Error("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Public pages
	blogHandler.RegisterRoutes(mux, commentLimit.Limit)

	// Admin API
	if cfg.AdminEnabled() {
		adminLimiter := middleware.NewRateLimiter(adminMaxAttempts, adminLockout, logger)
		defer adminLimiter.Stop()
		adminAuth := middleware.NewAdminAuthMiddleware(cfg.AdminUsername, cfg.AdminPasswordHash, adminLimiter, logger)

		adminHandler := handler.NewAdminHandler(postService, taxonomyService, commentService, coverService, logger)
		adminHandler.RegisterRoutes(mux, adminAuth.Handler)
		logger.Info("Admin API enabled")
	} else {
		logger.Warn("Admin API disabled, ADMIN_PASSWORD_HASH not set")
	}

	// Metrics sit directly on the mux so the matched pattern is visible to them
	security := middleware.NewSecurityHeadersMiddleware(isSecure)
	requestLogging := middleware.NewRequestLoggingMiddleware(logger)
	app := middleware.Stack(
		security.Handler,
		requestLogging.Handler,
		metrics.Middleware,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Let running jobs finish before the database closes
	jobWorker.Stop()

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
