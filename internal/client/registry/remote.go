package registry

import (
	"context"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/common"
)

// ObjectLister is the bucket listing the remote view reads through.
type ObjectLister interface {
	List(ctx context.Context) ([]models.RemoteObject, error)
	PublicURL(name string) string
}

// RemoteError reports a failed listing. It matches common.ErrRemoteUnavailable
// and carries the backend message.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return "remote listing unavailable: " + e.Message }

func (e *RemoteError) Is(target error) bool { return target == common.ErrRemoteUnavailable }

func (e *RemoteError) Unwrap() error { return e.Err }

// RemoteView normalizes the bucket listing into registry entries.
type RemoteView struct {
	lister ObjectLister
}

func NewRemoteView(lister ObjectLister) *RemoteView {
	return &RemoteView{lister: lister}
}

// Fetch lists the bucket. Each object name becomes the storage path, the
// public URL (if any) the access URL, and the key follows models.RemoteKey.
func (v *RemoteView) Fetch(ctx context.Context) ([]models.RegistryEntry, error) {
	objs, err := v.lister.List(ctx)
	if err != nil {
		return nil, &RemoteError{Message: err.Error(), Err: err}
	}

	entries := make([]models.RegistryEntry, 0, len(objs))
	for _, o := range objs {
		e := models.RegistryEntry{
			DisplayName: o.Name,
			StoragePath: o.Name,
			AccessURL:   v.lister.PublicURL(o.Name),
		}
		if !o.LastModified.IsZero() {
			at := o.LastModified
			e.SubmittedAt = &at
		}
		e.Key = models.RemoteKey(e)
		entries = append(entries, e)
	}
	return entries, nil
}
