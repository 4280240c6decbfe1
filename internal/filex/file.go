// Package filex holds filesystem helpers for the client: locating its data
// directory and describing files picked for upload.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// EnsureSubdDir creates dirName under the current working directory (if
// missing) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Selection describes a local file chosen for upload.
type Selection struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// ErrNotRegularFile is returned by Select for directories, devices and the like.
var ErrNotRegularFile = errors.New("not a regular file")

// Select stats path and sniffs its content type. The file is not kept open.
func Select(path string) (*Selection, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}

	contentType := "application/octet-stream"
	if fi.Size() > 0 {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("detect content type of %s: %w", path, err)
		}
		contentType = mt.String()
	}

	return &Selection{
		Path:        path,
		Name:        fi.Name(),
		Size:        fi.Size(),
		ContentType: contentType,
	}, nil
}
