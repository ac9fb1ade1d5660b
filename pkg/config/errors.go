package config

import "errors"

var (
	// ErrNilPointer is returned when a nil target struct is passed to Load.
	ErrNilPointer = errors.New("config: target must be a non-nil pointer")

	// ErrParsingConfig is returned when environment parsing fails.
	ErrParsingConfig = errors.New("config: failed to parse environment")
)
