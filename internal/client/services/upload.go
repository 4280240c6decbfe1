// Package services contains application services for the gophdrop client.
// This file defines the upload service: file selection, the caller-side size
// policy, and recording completed uploads in the local registry.
package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophdrop/internal/client/client"
	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/client/progress"
	"github.com/dmitrijs2005/gophdrop/internal/client/transfer"
	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/dmitrijs2005/gophdrop/internal/filex"
	"github.com/dmitrijs2005/gophdrop/internal/logging"
)

// UploadService defines upload operations for the CLI.
//
// Contract:
//   - Upload: select a local file, apply the size policy and start the transfer.
//   - Cancel: abort the running transfer if it is in flight.
//   - Status: snapshot of the current (or last) transfer.
//   - Done: closed when the current transfer has finished.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type UploadService interface {
	Upload(ctx context.Context, path string) (*models.SelectedFile, error)
	Cancel()
	Status() models.TransferRecord
	Done() <-chan struct{}
	Ping(ctx context.Context) error
	Close() error
}

// EntryAppender records completed uploads.
type EntryAppender interface {
	Append(ctx context.Context, entry models.RegistryEntry) error
}

type uploadService struct {
	client      client.Client
	store       EntryAppender
	maxFileSize int64
	logger      logging.Logger
	observer    transfer.Observer
	controller  *transfer.Controller
}

// NewUploadService wires a transfer controller to c. Every event is passed to
// observer after a completed upload has been recorded in store.
func NewUploadService(c client.Client, store EntryAppender, bucket string, maxFileSize int64, logger logging.Logger, observer transfer.Observer) UploadService {
	s := &uploadService{
		client:      c,
		store:       store,
		maxFileSize: maxFileSize,
		logger:      logger,
		observer:    observer,
	}
	s.controller = transfer.NewController(c, bucket, logger, s.onEvent)
	return s
}

func (s *uploadService) onEvent(ev transfer.Event) {
	if ev.Kind == transfer.EventCompleted && ev.Entry != nil {
		if err := s.store.Append(context.Background(), *ev.Entry); err != nil {
			s.logger.Warn(context.Background(), "could not record uploaded file", "path", ev.Entry.StoragePath, "error", err)
		}
	}
	if s.observer != nil {
		s.observer(ev)
	}
}

// Upload resolves path into a selected file and starts sending it. Files
// over the size limit are rejected with common.ErrInvalidInput.
func (s *uploadService) Upload(ctx context.Context, path string) (*models.SelectedFile, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no file selected", common.ErrInvalidInput)
	}

	sel, err := filex.Select(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if s.maxFileSize > 0 && sel.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: Maximum file size is %s", common.ErrInvalidInput, progress.FormatBytes(s.maxFileSize))
	}

	file := &models.SelectedFile{
		Name:        sel.Name,
		Size:        sel.Size,
		ContentType: sel.ContentType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(sel.Path)
		},
	}

	if err := s.controller.Start(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *uploadService) Cancel() {
	s.controller.Cancel()
}

func (s *uploadService) Status() models.TransferRecord {
	return s.controller.Snapshot()
}

func (s *uploadService) Done() <-chan struct{} {
	return s.controller.Done()
}

func (s *uploadService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *uploadService) Close() error {
	return s.client.Close()
}
