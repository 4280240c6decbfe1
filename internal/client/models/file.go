package models

import (
	"io"
	"time"
)

// SelectedFile is a file picked for upload. Open is called once per attempt.
type SelectedFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// UploadAck is the backend acknowledgement of a stored file.
type UploadAck struct {
	Path      string
	PublicURL string
}

// RemoteObject is one item of the bucket listing.
type RemoteObject struct {
	Name         string
	Size         int64
	LastModified time.Time
}
