package registry

import "errors"

var (
	// ErrConnectionNotFound is returned for operations on an unknown connection.
	ErrConnectionNotFound = errors.New("registry: connection not found")

	// ErrEmptyRoomName is returned when joining a room with an empty name.
	ErrEmptyRoomName = errors.New("registry: room name cannot be empty")
)
