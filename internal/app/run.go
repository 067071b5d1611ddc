package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"climate-server/internal/config"
	db "climate-server/internal/db"
	httpapi "climate-server/internal/httpapi"
	climate "climate-server/internal/modules/climate"
	climateviews "climate-server/internal/modules/climate/views"
	"climate-server/internal/observability"
)

func Run(ctx context.Context, cfg config.Config) error {
	return run(ctx, cfg, observability.NewMetrics())
}

func run(ctx context.Context, cfg config.Config, metrics *observability.Metrics) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"requestTimeout", cfg.RequestTimeout,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbDSNSet", cfg.DSN != "",
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbPreload", cfg.Preload,
		"tobsCutoff", cfg.TOBSCutoff,
	)

	srv, dbConn, err := newServer(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// newServer opens and validates the dataset and wires every route. Store
// failures wrap types.ErrStoreUnavailable.
func newServer(ctx context.Context, cfg config.Config, metrics *observability.Metrics) (*http.Server, *sql.DB, error) {
	dbConn, err := db.Open(ctx, cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	fail := func(err error) (*http.Server, *sql.DB, error) {
		_ = db.Close(dbConn)
		return nil, nil, err
	}

	if err := db.ValidateSchema(ctx, dbConn); err != nil {
		return fail(err)
	}
	slog.Info("database connection successful")

	if err := climateviews.LoadTemplates(); err != nil {
		return fail(err)
	}

	mux := httpapi.NewMux(dbConn, metrics)
	if err := climate.RegisterFeature(ctx, mux, dbConn, cfg, metrics); err != nil {
		return fail(err)
	}

	return httpapi.NewServer(cfg, mux, metrics), dbConn, nil
}
