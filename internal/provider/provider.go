package provider

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrMalformedResponse  = errors.New("malformed backend response")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
