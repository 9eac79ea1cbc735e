package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLimitReached  = errors.New("daily limit reached")
	ErrNotFound      = errors.New("not found")
	ErrBadResponse   = errors.New("unexpected response")
	ErrInvalidConfig = errors.New("invalid client configuration")
)

// APIError is a non-2xx answer from the document API. Detail holds the
// server's "detail" text when the body carried one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// Unwrap lets errors.Is match the status class sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrLimitReached
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= 500:
		return ErrUnavailable
	}
	return nil
}
