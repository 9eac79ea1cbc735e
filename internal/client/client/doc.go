// Package client talks to the AI Doc Pro document API.
//
// # Overview
//
// The package provides:
//  1. The Client interface used by the services: health, quota check,
//     spreadsheet preview/generation, autofill analyze/apply/process and the
//     template gallery endpoints.
//  2. HTTPClient, the JSON/multipart implementation. Every request carries
//     an X-Request-ID, the caller's X-User-ID hint and, when signed in, the
//     provider-issued access token as a Bearer credential.
//  3. Local store bootstrap (InitDatabase, RunMigrations) wiring SQLite and
//     the embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are *APIError,
// which carries the server's "detail" text and unwraps to a status class
// sentinel, so callers can match with errors.Is:
//
//	429        ErrLimitReached
//	401, 403   ErrUnauthorized
//	404        ErrNotFound
//	5xx        ErrUnavailable
//
// Nothing is retried here; retries are always user initiated.
package client
