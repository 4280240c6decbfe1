package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/registry"
)

// FilesService is the CLI's view of the registry.
type FilesService interface {
	Refresh(ctx context.Context) registry.View
	View(ctx context.Context) registry.View
	Delete(ctx context.Context, key string) (registry.DeleteResult, error)
}

// Reconciler is the registry the files service reads.
type Reconciler interface {
	Refresh(ctx context.Context) registry.View
	View(ctx context.Context) registry.View
	DeleteByKey(ctx context.Context, key string) (registry.DeleteResult, error)
}

type filesService struct {
	reconciler    Reconciler
	deleteTimeout time.Duration
}

// NewFilesService bounds every delete by deleteTimeout when it is positive.
func NewFilesService(r Reconciler, deleteTimeout time.Duration) FilesService {
	return &filesService{reconciler: r, deleteTimeout: deleteTimeout}
}

func (s *filesService) Refresh(ctx context.Context) registry.View {
	return s.reconciler.Refresh(ctx)
}

func (s *filesService) View(ctx context.Context) registry.View {
	return s.reconciler.View(ctx)
}

func (s *filesService) Delete(ctx context.Context, key string) (registry.DeleteResult, error) {
	if s.deleteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deleteTimeout)
		defer cancel()
	}
	return s.reconciler.DeleteByKey(ctx, key)
}
