package registry

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
)

// Merge combines local and remote entries into one view keyed by identity.
//
// Local entries come first in their own order, then remote entries that
// matched nothing, in listing order. A remote entry matches a local one by
// key, or failing that by storage path. A matched entry becomes OriginBoth:
// empty local fields are filled from the remote side and the remote storage
// path and access URL replace the local ones. Among local entries sharing a
// key the first one wins. Merge does not modify its arguments.
func Merge(local, remote []models.RegistryEntry) []models.RegistryEntry {
	out := make([]models.RegistryEntry, 0, len(local)+len(remote))
	byKey := make(map[string]int, len(local)+len(remote))
	byPath := make(map[string]int, len(local))

	for _, e := range local {
		if e.Key == "" {
			e.Key = models.LocalKey(e)
		}
		if _, dup := byKey[e.Key]; dup {
			continue
		}
		e.Origin = models.OriginLocalOnly
		byKey[e.Key] = len(out)
		if e.StoragePath != "" {
			if _, seen := byPath[e.StoragePath]; !seen {
				byPath[e.StoragePath] = len(out)
			}
		}
		out = append(out, e)
	}

	for _, r := range remote {
		if r.Key == "" {
			r.Key = models.RemoteKey(r)
		}

		idx, ok := byKey[r.Key]
		if !ok && r.StoragePath != "" {
			idx, ok = byPath[r.StoragePath]
			if ok && out[idx].Origin != models.OriginLocalOnly {
				ok = false
			}
		}

		if !ok {
			if _, dup := byKey[r.Key]; dup {
				continue
			}
			r.Origin = models.OriginRemoteOnly
			byKey[r.Key] = len(out)
			out = append(out, r)
			continue
		}

		if out[idx].Origin != models.OriginLocalOnly {
			continue
		}
		out[idx] = combine(out[idx], r)
	}

	return out
}

func combine(local, remote models.RegistryEntry) models.RegistryEntry {
	merged := local
	merged.Origin = models.OriginBoth

	if merged.DisplayName == "" {
		merged.DisplayName = remote.DisplayName
	}
	if merged.SubmittedAt == nil && remote.SubmittedAt != nil {
		at := *remote.SubmittedAt
		merged.SubmittedAt = &at
	}
	if remote.StoragePath != "" {
		merged.StoragePath = remote.StoragePath
	}
	if remote.AccessURL != "" {
		merged.AccessURL = remote.AccessURL
	}
	return merged
}

// TryDerivePath recovers the storage path from a public access URL built
// with prefix (see bucket.Lister.PublicPrefix). It fails for URLs from any
// other template, which callers treat as "no remote path known".
func TryDerivePath(accessURL, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(accessURL, prefix) {
		return "", false
	}

	rest := strings.TrimPrefix(accessURL, prefix)
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	path, err := url.PathUnescape(rest)
	if err != nil || path == "" {
		return "", false
	}
	return path, true
}
