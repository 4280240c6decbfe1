// Package registry keeps the list of known files by reconciling the client's
// local record of uploads with the bucket listing.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophdrop/internal/client/client"
	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/dmitrijs2005/gophdrop/internal/logging"
)

// LocalSource is the local half of the registry.
type LocalSource interface {
	List(ctx context.Context) []models.RegistryEntry
	RemoveWhere(ctx context.Context, pred func(models.RegistryEntry) bool) (int, error)
}

// RemoteSource is the authoritative half of the registry.
type RemoteSource interface {
	Fetch(ctx context.Context) ([]models.RegistryEntry, error)
}

// Deleter removes an object from the bucket by storage path.
type Deleter interface {
	Delete(ctx context.Context, path string) error
}

// View is one reconciled snapshot.
type View struct {
	Entries []models.RegistryEntry
	// Status is a user-facing note about the last remote interaction.
	Status string
	// RemoteErr is the last listing failure, nil after a successful fetch.
	RemoteErr error
}

// Count is the number of distinct files across both sources.
func (v View) Count() int { return len(v.Entries) }

// Find returns the entry with key.
func (v View) Find(key string) (models.RegistryEntry, bool) {
	for _, e := range v.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return models.RegistryEntry{}, false
}

// DeleteResult describes what a delete did on each side.
type DeleteResult struct {
	Entry models.RegistryEntry
	// RemotePath is the storage path the remote delete targeted, "" if none
	// could be resolved.
	RemotePath    string
	RemoteDeleted bool
	RemoteErr     error
	LocalRemoved  int
	Status        string
}

// Reconciler merges the local store with the last remote snapshot and routes
// deletes to both sides. Views are recomputed on every call.
type Reconciler struct {
	local        LocalSource
	remote       RemoteSource
	deleter      Deleter
	bucket       string
	publicPrefix string
	logger       logging.Logger

	mu         sync.Mutex
	remoteSnap []models.RegistryEntry
	status     string
	remoteErr  error
}

// NewReconciler wires the two sources. publicPrefix is the public URL prefix
// of the bucket, used to recover storage paths from access URLs.
func NewReconciler(local LocalSource, remote RemoteSource, deleter Deleter, bucket, publicPrefix string, logger logging.Logger) *Reconciler {
	return &Reconciler{
		local:        local,
		remote:       remote,
		deleter:      deleter,
		bucket:       bucket,
		publicPrefix: publicPrefix,
		logger:       logger,
	}
}

// Refresh re-fetches the remote listing and returns the new view. On a
// listing failure the remote snapshot is dropped, so the view shows local
// entries only, and Status explains why.
func (r *Reconciler) Refresh(ctx context.Context) View {
	entries, err := r.remote.Fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.logger.Warn(ctx, "remote listing failed", "bucket", r.bucket, "error", err)
		r.remoteSnap = nil
		r.remoteErr = err
		r.status = LoadFailureStatus(err, r.bucket)
	} else {
		r.remoteSnap = entries
		r.remoteErr = nil
		r.status = ""
	}
	return r.viewLocked(ctx)
}

// View merges the current local entries with the last remote snapshot
// without touching the network.
func (r *Reconciler) View(ctx context.Context) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked(ctx)
}

func (r *Reconciler) viewLocked(ctx context.Context) View {
	return View{
		Entries:   Merge(r.local.List(ctx), r.remoteSnap),
		Status:    r.status,
		RemoteErr: r.remoteErr,
	}
}

// DeleteByKey deletes the entry with key from the bucket when a storage path
// is known, then removes it from the local store whatever the remote outcome.
// A remote failure is reported in the result, not as an error.
func (r *Reconciler) DeleteByKey(ctx context.Context, key string) (DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.viewLocked(ctx).Find(key)
	if !ok {
		return DeleteResult{}, fmt.Errorf("entry %q: %w", key, common.ErrorNotFound)
	}

	res := DeleteResult{Entry: entry, RemotePath: r.resolvePath(entry)}

	if res.RemotePath != "" {
		if err := r.deleter.Delete(ctx, res.RemotePath); err != nil {
			res.RemoteErr = err
			res.Status = "Failed to delete from bucket: " + errorMessage(err)
			r.logger.Warn(ctx, "remote delete failed", "path", res.RemotePath, "error", err)
		} else {
			res.RemoteDeleted = true
			res.Status = fmt.Sprintf("Deleted %s from bucket", entry.DisplayName)
			r.dropRemoteLocked(entry, res.RemotePath)
		}
	}

	if entry.Origin.HasLocal() {
		n, err := r.local.RemoveWhere(ctx, matches(entry))
		if err != nil {
			return res, fmt.Errorf("remove local entry: %w", err)
		}
		res.LocalRemoved = n
	}

	if res.RemotePath == "" {
		res.Status = fmt.Sprintf("Removed %s from local list", entry.DisplayName)
	}
	return res, nil
}

func (r *Reconciler) resolvePath(e models.RegistryEntry) string {
	if e.StoragePath != "" {
		return e.StoragePath
	}
	if path, ok := TryDerivePath(e.AccessURL, r.publicPrefix); ok {
		return path
	}
	return ""
}

func (r *Reconciler) dropRemoteLocked(entry models.RegistryEntry, path string) {
	kept := make([]models.RegistryEntry, 0, len(r.remoteSnap))
	for _, e := range r.remoteSnap {
		if e.Key == entry.Key || e.StoragePath == path {
			continue
		}
		kept = append(kept, e)
	}
	r.remoteSnap = kept
}

// matches selects the local records folded into entry.
func matches(entry models.RegistryEntry) func(models.RegistryEntry) bool {
	return func(e models.RegistryEntry) bool {
		switch {
		case models.LocalKey(e) == entry.Key:
			return true
		case e.StoragePath != "" && e.StoragePath == entry.StoragePath:
			return true
		case e.AccessURL != "" && e.AccessURL == entry.AccessURL:
			return true
		}
		return false
	}
}

// LoadFailureStatus renders a listing failure for the user, naming the
// configured bucket when the backend complains about it.
func LoadFailureStatus(err error, bucket string) string {
	msg := errorMessage(err)
	if strings.Contains(msg, "Bucket not found") || strings.Contains(msg, "bucket") {
		return fmt.Sprintf("Failed to load files: %s. Make sure a storage bucket named '%s' exists and configure the bucket name if you use a different one.", msg, bucket)
	}
	return "Failed to load files: " + msg
}

func errorMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	var be *client.BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
