// Package server wires and runs the upload gateway: the HTTP API in front of
// the object store and the gRPC health service. It stops both on SIGINT,
// SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/logging"
	"github.com/dmitrijs2005/gophdrop/internal/s3x"
	"github.com/dmitrijs2005/gophdrop/internal/server/config"
	"github.com/dmitrijs2005/gophdrop/internal/server/httpapi"
	"github.com/dmitrijs2005/gophdrop/internal/server/metrics"
	"github.com/dmitrijs2005/gophdrop/internal/server/storage"

	gs "github.com/dmitrijs2005/gophdrop/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
	health  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	s3c, err := s3x.NewClient(ctx, s3x.Options{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		PathStyle: c.S3PathStyle,
	})
	if err != nil {
		return nil, err
	}

	return newApp(c, logger, storage.NewS3Store(s3c, c.Bucket, c.PublicBaseURL)), nil
}

func newApp(c *config.Config, logger logging.Logger, store httpapi.Store) *App {
	opts := httpapi.Options{MaxUploadSize: c.MaxUploadSize}
	if c.MetricsEnabled {
		opts.Metrics = metrics.New()
	}

	return &App{
		config:  c,
		logger:  logger,
		handler: httpapi.NewRouter(store, logger, opts),
		health:  gs.NewGRPCServer(c.GRPCAddr, logger),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr, "bucket", app.config.Bucket)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or either server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Stopped")
}
