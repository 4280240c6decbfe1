package transfer

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdrop/internal/client/client"
	"github.com/dmitrijs2005/gophdrop/internal/common"
)

// FailureKind groups transfer failures by what the user can do about them.
type FailureKind string

const (
	FailureTargetNotFound    FailureKind = "target_not_found"
	FailureAccessPolicy      FailureKind = "access_policy"
	FailureNetwork           FailureKind = "network"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureRejected          FailureKind = "rejected"
	FailureUnknown           FailureKind = "unknown"
)

// Failure is the classified cause of a failed transfer. Message is ready to
// be shown to the user.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Classify maps a transport error onto a Failure. bucket names the configured
// storage target in the hint for a missing target.
func Classify(err error, bucket string) *Failure {
	msg := err.Error()
	var be *client.BackendError
	if errors.As(err, &be) {
		msg = be.Message
	}

	f := &Failure{Err: err}
	switch {
	case errors.Is(err, common.ErrNetwork):
		f.Kind = FailureNetwork
		f.Message = "Upload failed: network error"
	case errors.Is(err, common.ErrMalformedResponse):
		f.Kind = FailureMalformedResponse
		f.Message = "Upload failed: invalid JSON response from server"
	case errors.Is(err, common.ErrTargetNotFound):
		f.Kind = FailureTargetNotFound
		f.Message = fmt.Sprintf("Upload failed: %s. Make sure a storage bucket named '%s' exists and that the gateway is configured to use it.", msg, bucket)
	case errors.Is(err, common.ErrAccessPolicyDenied):
		f.Kind = FailureAccessPolicy
		f.Message = fmt.Sprintf("Upload failed: %s. This looks like an access policy rejection (check your bucket policies).", msg)
	case errors.Is(err, common.ErrBackendRejection):
		f.Kind = FailureRejected
		f.Message = "Upload failed: " + msg
	default:
		f.Kind = FailureUnknown
		f.Message = "Upload failed: " + msg
	}
	return f
}
