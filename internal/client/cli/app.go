package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/bucket"
	"github.com/dmitrijs2005/gophdrop/internal/client/client"
	"github.com/dmitrijs2005/gophdrop/internal/client/config"
	"github.com/dmitrijs2005/gophdrop/internal/client/registry"
	"github.com/dmitrijs2005/gophdrop/internal/client/services"
	"github.com/dmitrijs2005/gophdrop/internal/filex"
	"github.com/dmitrijs2005/gophdrop/internal/logging"
	"github.com/dmitrijs2005/gophdrop/internal/s3x"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	uploads services.UploadService
	files   services.FilesService
	printer *progressPrinter
	out     io.Writer
	db      *sql.DB

	drainTimeout time.Duration

	mu       sync.Mutex
	mode     Mode
	lastView registry.View
}

// uploadDrainTimeout bounds how long exit waits for a running upload to stop
// before the database is closed.
const uploadDrainTimeout = 3 * time.Second

// NewApp builds the client from c: local database, upload transport,
// bucket listing and the registry on top of them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dir, err := filex.EnsureSubdDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBPath(dir))
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.UploadEndpoint, c.DeleteEndpoint, c.HealthAddr)
	if err != nil {
		db.Close()
		return nil, err
	}

	s3c, err := s3x.NewClient(ctx, s3x.Options{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		PathStyle: c.S3PathStyle,
	})
	if err != nil {
		apiClient.Close()
		db.Close()
		return nil, err
	}
	lister := bucket.NewLister(s3c, c.Bucket, c.PublicBaseURL, c.ListLimit)

	local := registry.NewLocalStore(db, logger)
	rec := registry.NewReconciler(local, registry.NewRemoteView(lister), apiClient, lister.Bucket(), lister.PublicPrefix(), logger)

	printer := newProgressPrinter(os.Stdout)

	a := newApp(c, logger, printer,
		services.NewUploadService(apiClient, local, lister.Bucket(), c.MaxFileSize, logger, printer.Handle),
		services.NewFilesService(rec, c.DeleteTimeout),
	)
	a.db = db
	return a, nil
}

// newApp renders command output to printer.out, the same writer the upload
// observer draws progress on.
func newApp(c *config.Config, logger logging.Logger, printer *progressPrinter, uploads services.UploadService, files services.FilesService) *App {
	return &App{
		config:       c,
		logger:       logger,
		uploads:      uploads,
		files:        files,
		printer:      printer,
		out:          printer.out,
		mode:         ModeOffline,
		drainTimeout: uploadDrainTimeout,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) getStatus() string {
	s := string(a.Mode())
	rec := a.uploads.Status()
	if rec.State.Active() {
		s += " uploading"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run loads the files view, starts the online watcher and blocks in the REPL
// until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	fmt.Fprintln(a.out, "Welcome to gophdrop CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	_ = a.Refresh(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))

	a.uploads.Cancel()
	cancel()
	a.drainUploads()
}

// drainUploads waits for the upload goroutine to exit so a late completion
// does not write to a closed database.
func (a *App) drainUploads() {
	timer := time.NewTimer(a.drainTimeout)
	defer timer.Stop()

	select {
	case <-a.uploads.Done():
	case <-timer.C:
		a.logger.Warn(context.Background(), "upload still running at exit", "timeout", a.drainTimeout)
	}
}

func (a *App) close() {
	if err := a.uploads.Close(); err != nil {
		a.logger.Warn(context.Background(), "close client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "close database", "error", err)
		}
	}
}

// StartOnlineStatusWatcher pings the gateway every interval and flips the
// mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.uploads.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
