/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/biodash/biomarker"
	"github.com/humaidq/biodash/db"
	"github.com/humaidq/biodash/extract"
	"github.com/humaidq/biodash/metrics"
	"github.com/humaidq/biodash/routes"
)

const (
	shutdownTimeout = 30 * time.Second
	janitorInterval = 10 * time.Minute
)

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Value:   "8080",
			Sources: cli.EnvVars("PORT"),
			Usage:   "the web server port",
		},
		&cli.StringFlag{
			Name:    "database-url",
			Sources: cli.EnvVars("DATABASE_URL"),
			Usage:   "PostgreSQL connection string for the upload audit log (optional)",
		},
		&cli.StringFlag{
			Name:    "extract-url",
			Value:   extract.DefaultURL,
			Sources: cli.EnvVars("EXTRACT_URL"),
			Usage:   "URL of the report extraction service",
		},
		&cli.DurationFlag{
			Name:    "extract-timeout",
			Value:   extract.DefaultTimeout,
			Sources: cli.EnvVars("EXTRACT_TIMEOUT"),
			Usage:   "timeout for a single extraction call",
		},
		&cli.FloatFlag{
			Name:    "upload-rate",
			Value:   10,
			Sources: cli.EnvVars("UPLOAD_RATE"),
			Usage:   "uploads allowed per minute per client IP",
		},
		&cli.IntFlag{
			Name:    "upload-burst",
			Value:   3,
			Sources: cli.EnvVars("UPLOAD_BURST"),
			Usage:   "uploads a client IP may make in a burst",
		},
		&cli.BoolFlag{
			Name:    "trust-proxy",
			Sources: cli.EnvVars("TRUST_PROXY"),
			Usage:   "rate limit on the X-Forwarded-For hop added by a reverse proxy",
		},
		&cli.IntFlag{
			Name:    "max-upload-mb",
			Value:   routes.DefaultMaxUploadBytes >> 20,
			Sources: cli.EnvVars("MAX_UPLOAD_MB"),
			Usage:   "maximum size of an uploaded report in megabytes",
		},
		&cli.DurationFlag{
			Name:    "session-idle",
			Value:   24 * time.Hour,
			Sources: cli.EnvVars("SESSION_IDLE"),
			Usage:   "drop dashboard state of sessions idle for this long",
		},
		&cli.DurationFlag{
			Name:    "audit-retention",
			Value:   30 * 24 * time.Hour,
			Sources: cli.EnvVars("AUDIT_RETENTION"),
			Usage:   "delete audited uploads older than this",
		},
	},
	Action: start,
}

// serverConfig holds the resolved start flags
type serverConfig struct {
	Port           string
	DatabaseURL    string
	ExtractURL     string
	ExtractTimeout time.Duration
	UploadRate     float64
	UploadBurst    int
	TrustProxy     bool
	MaxUploadBytes int64
	SessionIdle    time.Duration
	AuditRetention time.Duration
}

func configFromCommand(cmd *cli.Command) (serverConfig, error) {
	cfg := serverConfig{
		Port:           cmd.String("port"),
		DatabaseURL:    cmd.String("database-url"),
		ExtractURL:     cmd.String("extract-url"),
		ExtractTimeout: cmd.Duration("extract-timeout"),
		UploadRate:     cmd.Float("upload-rate"),
		UploadBurst:    int(cmd.Int("upload-burst")),
		TrustProxy:     cmd.Bool("trust-proxy"),
		MaxUploadBytes: int64(cmd.Int("max-upload-mb")) << 20,
		SessionIdle:    cmd.Duration("session-idle"),
		AuditRetention: cmd.Duration("audit-retention"),
	}

	return cfg, cfg.validate()
}

func (cfg serverConfig) validate() error {
	switch {
	case cfg.ExtractURL == "":
		return errExtractURLRequired
	case cfg.ExtractTimeout <= 0:
		return errInvalidExtractTimeout
	case cfg.UploadRate <= 0 || cfg.UploadBurst < 1:
		return errInvalidUploadRate
	case cfg.MaxUploadBytes <= 0:
		return errInvalidUploadSize
	}

	return nil
}

func start(ctx context.Context, cmd *cli.Command) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	if cfg.DatabaseURL != "" {
		// Set DATABASE_URL for db package
		os.Setenv("DATABASE_URL", cfg.DatabaseURL)

		appLogger.Info("Connecting to database")

		if err := db.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		appLogger.Info("Syncing database schema")

		if err := db.SyncSchema(ctx); err != nil {
			return fmt.Errorf("failed to sync schema: %w", err)
		}
	} else {
		appLogger.Warn("No database configured, upload audit log disabled")
	}

	store := biomarker.NewStore()
	limiter := routes.NewIPRateLimiter(cfg.UploadRate, cfg.UploadBurst)
	if cfg.TrustProxy {
		limiter.TrustProxy()
	}
	client := extract.NewClient(extract.Config{URL: cfg.ExtractURL, Timeout: cfg.ExtractTimeout})

	f := newApp(store, client, limiter, routes.UploadOptions{MaxUploadBytes: cfg.MaxUploadBytes})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runJanitor(ctx, cfg, store, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:      f,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.ExtractTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     requestStdLogger,
	}

	errCh := make(chan error, 1)

	go func() {
		appLogger.Info("Starting web server", "port", cfg.Port, "extract_url", client.URL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}

	return nil
}

// newApp builds the router with all middleware and API routes.
func newApp(store *biomarker.Store, client *extract.Client, limiter *routes.IPRateLimiter, opts routes.UploadOptions) *flamego.Flame {
	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(session.Sessioner(session.Options{
		Cookie: session.CookieOptions{
			Name:     "biodash_session",
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}))
	f.Use(routes.RequestMetrics)
	f.Use(routes.RequestLogger)
	f.Use(routes.APIHeaders())

	f.Map(store)
	f.Map(client)
	f.Map(opts)

	configureEmptyNotFoundHandler(f)

	f.Get("/healthz", routes.Healthz)
	f.Get("/metrics", routes.Metrics)

	f.Group("/api", func() {
		f.Options("/extract", routes.Extract)
		f.Post("/extract", limiter.Handler(), routes.Extract)

		f.Group("/dashboard", func() {
			f.Get("", routes.Dashboard)
			f.Get("/groups", routes.DashboardGroups)
			f.Get("/export", routes.DashboardExport)
			f.Get("/uploads", routes.DashboardUploads)
			f.Post("/upload", limiter.Handler(), routes.DashboardUpload)
			f.Post("/import", limiter.Handler(), routes.DashboardImport)
			f.Post("/reset", routes.DashboardReset)
		})
	})

	return f
}

func configureEmptyNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
	})
}

// runJanitor prunes idle sessions, idle rate limiters and old audit rows
// until ctx is done.
func runJanitor(ctx context.Context, cfg serverConfig, store *biomarker.Store, limiter *routes.IPRateLimiter) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if removed := store.Prune(cfg.SessionIdle); removed > 0 {
			appLogger.Info("Pruned idle sessions", "count", removed)
		}
		metrics.SetSessions(store.Len())

		limiter.Prune(time.Hour)

		if db.Enabled() && cfg.AuditRetention > 0 {
			removed, err := db.PruneExtractionRuns(ctx, time.Now().Add(-cfg.AuditRetention))
			if err != nil {
				appLogger.Warn("Failed to prune extraction runs", "error", err)
			} else if removed > 0 {
				appLogger.Info("Pruned extraction runs", "count", removed)
			}
		}
	}
}
