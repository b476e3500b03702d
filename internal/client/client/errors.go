package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
)

// Fallback messages used when the backend gives no "error" field.
const (
	MsgSearchFailed  = "Failed to search product"
	MsgProductFailed = "Failed to get product"
	MsgPredictFailed = "Failed to get prediction"
	MsgSignupFailed  = "Failed to sign up"
	MsgLoginFailed   = "Failed to login"
	MsgVerifyFailed  = "Authentication failed"
	MsgLogoutFailed  = "Logout failed"
	MsgSuggestFailed = "Failed to get suggestions"
	MsgHistoryFailed = "Failed to get search history"
	MsgHealthFailed  = "Server is not reachable"
)

// APIError is a failed backend call. Status is 0 when no response was
// received.
type APIError struct {
	Status  int
	Message string
	// AvailableRecords is set by /predict when there is too little history.
	AvailableRecords *int

	kind  error
	cause error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		return ErrUnavailable
	}
	return nil
}
