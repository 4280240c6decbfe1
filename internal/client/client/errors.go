package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophdrop/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
)

// BackendError is a structured rejection returned by the gateway. It matches
// common.ErrBackendRejection and, depending on the message, one of
// common.ErrTargetNotFound or common.ErrAccessPolicyDenied.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend rejected request (status %d): %s", e.StatusCode, e.Message)
}

func (e *BackendError) Is(target error) bool {
	switch target {
	case common.ErrBackendRejection:
		return true
	case common.ErrTargetNotFound:
		return e.subtype() == common.ErrTargetNotFound
	case common.ErrAccessPolicyDenied:
		return e.subtype() == common.ErrAccessPolicyDenied
	}
	return false
}

func (e *BackendError) subtype() error {
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "bucket"):
		return common.ErrTargetNotFound
	case strings.Contains(msg, "row-level"),
		strings.Contains(msg, "access denied"),
		e.StatusCode == http.StatusForbidden:
		return common.ErrAccessPolicyDenied
	}
	return nil
}
