// Package client talks to the grocery price backend over its REST API.
//
// HTTPClient implements Client. Every request carries an X-Request-ID and,
// except for signup, login and the health check, the bearer token supplied
// by a TokenSource. A 401 from any endpoint invokes the configured
// UnauthorizedHandler before the error is returned, so the session can be
// purged in one place.
//
// Failures are returned as *APIError. Its message is the backend's "error"
// field or a fixed fallback per operation, and errors.Is matches it against
// ErrUnauthorized, ErrNotFound, ErrBadRequest and ErrUnavailable.
//
// InitDatabase and RunMigrations open the local SQLite store and apply the
// embedded goose migrations.
package client
