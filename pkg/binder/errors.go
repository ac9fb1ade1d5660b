package binder

import "errors"

var (
	// ErrUnsupportedMediaType is returned when the request content type is
	// not the one the binder expects.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrMissingContentType is returned when a body-carrying request has no
	// Content-Type header.
	ErrMissingContentType = errors.New("missing content type")

	// ErrFailedToParseJSON is returned when the JSON body cannot be decoded
	// into the target struct.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseQuery is returned when query parameters cannot be
	// bound to the target struct.
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")

	// ErrFailedToParsePath is returned when path parameters cannot be bound
	// to the target struct.
	ErrFailedToParsePath = errors.New("failed to parse path parameters")
)
