package room

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomNameExists = errors.New("room name already exists")
)

// ValidationError carries the failing field tags from the validator.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "invalid room" }
