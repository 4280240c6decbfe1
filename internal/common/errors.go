// Package common defines shared constants and sentinel errors used across
// client and server layers of gophdrop. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Transfer input and controller misuse.
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransferSize = errors.New("invalid transfer size")
	ErrAlreadyInFlight     = errors.New("transfer already in flight")

	// Transport outcomes.
	ErrNetwork           = errors.New("network error")
	ErrBackendRejection  = errors.New("backend rejected request")
	ErrMalformedResponse = errors.New("malformed backend response")

	// Backend rejection subtypes. A rejection always matches ErrBackendRejection
	// and at most one of these.
	ErrTargetNotFound     = errors.New("storage target not found")
	ErrAccessPolicyDenied = errors.New("access policy denied")

	// Registry errors.
	ErrRemoteUnavailable = errors.New("remote listing unavailable")

	// ErrLocalStoreCorrupt is only ever logged; readers recover with an empty store.
	ErrLocalStoreCorrupt = errors.New("local store corrupt")
)
