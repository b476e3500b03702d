// Package common contains shared constants, sentinel errors and small helpers
// used across the grocery client components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
	// RequestIDHeaderName correlates a client request with backend logs.
	RequestIDHeaderName = "X-Request-ID"
)

// Keys of the persisted session in the local metadata store. They are
// always written and cleared together.
const (
	MetadataKeyToken = "auth_token"
	MetadataKeyUser  = "user"
)
