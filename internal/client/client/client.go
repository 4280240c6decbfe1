package client

import (
	"context"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
)

// UploadHooks lets the caller observe an upload while it runs. Both hooks are
// called from the goroutine feeding the request body, in order.
type UploadHooks struct {
	// OnAccepted fires once, when the transport has started reading the body.
	OnAccepted func()
	// OnProgress reports cumulative bytes of the file handed to the transport.
	OnProgress func(sent, total int64)
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Upload(ctx context.Context, file *models.SelectedFile, hooks UploadHooks) (*models.UploadAck, error)
	Delete(ctx context.Context, path string) error
}
