// Package client contains the client-side transport to the gophdrop gateway.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): Upload,
//     Delete and Ping.
//  2. HTTPClient, which streams multipart uploads through a progress-reporting
//     reader, posts delete requests as JSON and checks liveness through the
//     standard gRPC health service.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Upload and Delete return errors matching the sentinels of package common:
// ErrNetwork when no response arrived, ErrMalformedResponse for unusable 2xx
// bodies, and a *BackendError (matching ErrBackendRejection and possibly
// ErrTargetNotFound or ErrAccessPolicyDenied) for structured rejections.
// Ping reports ErrUnavailable when the server cannot be reached.
//
// Nothing in this package retries.
package client
