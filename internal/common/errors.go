package common

import "errors"

var (
	// ErrInvalidToken is returned when an access token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")
)
