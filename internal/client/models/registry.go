package models

import (
	"time"
)

// Origin tells which backing stores currently know about a registry entry.
// Only the reconciler assigns it.
type Origin string

const (
	OriginUnknown    Origin = ""
	OriginLocalOnly  Origin = "local"
	OriginRemoteOnly Origin = "remote"
	OriginBoth       Origin = "both"
)

// HasLocal reports whether the local store holds the entry.
func (o Origin) HasLocal() bool {
	return o == OriginLocalOnly || o == OriginBoth
}

// HasRemote reports whether the bucket holds the entry.
func (o Origin) HasRemote() bool {
	return o == OriginRemoteOnly || o == OriginBoth
}

// RegistryEntry is one file known to the local store, the bucket, or both.
//
// The JSON form is what the local store persists; Key and Origin are derived
// and never written.
type RegistryEntry struct {
	Key         string     `json:"-"`
	DisplayName string     `json:"name"`
	SubmittedAt *time.Time `json:"uploadedAt,omitempty"`
	AccessURL   string     `json:"url,omitempty"`
	StoragePath string     `json:"path,omitempty"`
	Origin      Origin     `json:"-"`
}

// LocalKey derives the identity of a locally recorded entry: the access URL,
// else the storage path, else name and submission time.
func LocalKey(e RegistryEntry) string {
	if e.AccessURL != "" {
		return e.AccessURL
	}
	if e.StoragePath != "" {
		return e.StoragePath
	}
	submitted := ""
	if e.SubmittedAt != nil {
		submitted = e.SubmittedAt.UTC().Format(time.RFC3339Nano)
	}
	return e.DisplayName + ":" + submitted
}

// RemoteKey derives the identity of a listed object: the access URL when the
// bucket is public, else the storage path.
func RemoteKey(e RegistryEntry) string {
	if e.AccessURL != "" {
		return e.AccessURL
	}
	return e.StoragePath
}
