// Package client talks to the HospiVibe backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface, one method per REST endpoint: login, register,
//     onboarding completion, appointments, user listing and nurse records.
//  2. HTTPClient, the net/http implementation. It attaches the bearer token
//     from a TokenSource, stamps every request with an X-Request-ID, applies
//     a client-side rate limit and records Prometheus metrics.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite database and applies embedded goose migrations.
//
// # Error Handling
//
// Backend rejections are returned as *APIError whose message is the
// backend's own text. APIError unwraps to ErrUnauthorized, ErrForbidden,
// ErrNotFound or ErrConflict by status, so callers can use errors.Is.
// Transport failures are reported as ErrUnavailable. Protected calls made
// without a token fail with ErrAuthRequired before any request is sent.
//
// Nothing is retried automatically.
package client
