package canvas

import "errors"

var (
	// ErrNotFound is returned when an operation targets a surface ID that
	// does not exist (never created, or already closed).
	ErrNotFound = errors.New("canvas: surface not found")

	// ErrDuplicateID is returned when creating a surface with an ID that
	// already exists.
	ErrDuplicateID = errors.New("canvas: surface already exists")

	// ErrInvalidPayload is returned when a component batch, size preset, or
	// data path fails validation. The surface is left untouched.
	ErrInvalidPayload = errors.New("canvas: invalid payload")
)
