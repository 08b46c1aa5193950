// Package server wires configuration, artifacts and the API into a running
// HTTP server. Shared by the server binary and the serve command.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"car-price/api"
	"car-price/api/audit"
	"car-price/core/artifacts"
	"car-price/internal/config"
	"car-price/internal/logging"
)

// Version is the release reported by /api/version
var Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

// OpenAudit selects the audit sink. A DSN selects PostgreSQL, otherwise
// entries go to the "audit" zap logger. The returned close func is never nil.
func OpenAudit(ctx context.Context, cfg config.AuditConfig) (audit.Logger, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return nil, noop, nil
	}
	if cfg.DSN == "" {
		return audit.NewZapLogger(logging.Named("audit")), noop, nil
	}

	pg, err := audit.OpenPostgres(ctx, cfg.DSN)
	if err != nil {
		return nil, noop, err
	}
	return pg, pg.Close, nil
}

// auditSink opens the configured sink. When the audit database cannot be
// reached, predictions are audited through zap instead and serving goes on.
func auditSink(ctx context.Context, cfg config.AuditConfig, logger *zap.Logger) (audit.Logger, func() error) {
	l, closeFn, err := OpenAudit(ctx, cfg)
	if err != nil {
		logger.Error("audit database unavailable, auditing to the log", zap.Error(err))
		return audit.NewZapLogger(logging.Named("audit")), func() error { return nil }
	}
	return l, closeFn
}

// Handler mounts the API under /api and, when uiPath is set, static files
// at the root
func Handler(apiServer http.Handler, uiPath string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiServer))
	if uiPath != "" {
		mux.Handle("/", http.FileServer(http.Dir(uiPath)))
	}
	return mux
}

// NewAPI loads the artifacts named by cfg and builds the API server. Artifact
// failures are logged and served as 503s rather than returned.
func NewAPI(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) *api.Server {
	opts := artifacts.Options{PredictTimeout: cfg.Artifacts.PredictTimeout()}
	bundle, loadErr := artifacts.LoadFile(ctx, cfg.Artifacts.Manifest, opts)
	if loadErr != nil {
		logging.Error("artifacts unavailable", zap.String("manifest", cfg.Artifacts.Manifest), zap.Error(loadErr))
	}

	apiOpts := []api.Option{api.WithDatasetPageLimit(cfg.Server.DatasetPageLimit)}
	if auditLogger != nil {
		apiOpts = append(apiOpts, api.WithAudit(auditLogger))
	}
	return api.NewServer(Version, bundle, loadErr, apiOpts...)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Named("server")

	auditLogger, closeAudit := auditSink(ctx, cfg.Audit, logger)
	defer func() {
		if err := closeAudit(); err != nil {
			logger.Warn("audit close failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      Handler(NewAPI(ctx, cfg, auditLogger), cfg.Server.UIPath),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("car price server listening",
			zap.String("version", Version),
			zap.String("addr", cfg.Server.Addr),
			zap.String("ui", cfg.Server.UIPath),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
