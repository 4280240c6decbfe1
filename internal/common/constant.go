// Package common contains shared constants and sentinel errors used across
// gophdrop components.
package common

const (
	// LocalRegistryKey is the metadata key under which the client keeps the
	// JSON-encoded list of files it has uploaded, most recent first.
	LocalRegistryKey = "uploadedFiles"

	// DefaultBucket is the bucket used when none is configured.
	DefaultBucket = "uploads"

	// UploadFormField is the multipart field carrying the file body.
	UploadFormField = "file"
)
