// Package server wires configuration, storage, services and transports
// together and runs the HTTP API next to the gRPC health endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/blob"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/httpapi"
	"github.com/dmitrijs2005/notehub/internal/server/metrics"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/notehub/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *http.Server
	grpc   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	fetcher := blob.NewHTTPFetcher(blob.NewHTTPClient(c.RemoteFetchTimeout))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	router := httpapi.NewRouter(&httpapi.Deps{
		Notes:      services.NewNoteService(db, rm, blobs, m, logger),
		Engagement: services.NewEngagementService(db, rm, logger),
		Archives:   services.NewArchiveService(db, rm, logger),
		Downloads:  services.NewDownloadService(db, rm, blobs, fetcher, m, logger),
		SecretKey:  []byte(c.SecretKey),
		Logger:     logger,
		Metrics:    m,
		Gatherer:   registry,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http: &http.Server{
			Addr:              c.EndpointAddrHTTP,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpc: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db, c.HealthInterval),
	}, nil
}

func (app *App) runHTTP(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.http.Addr)
		if err := app.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Run serves until ctx is cancelled or one of the servers fails; a failure
// stops the other server as well.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.runHTTP(gctx) })
	g.Go(func() error { return app.grpc.Run(gctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
