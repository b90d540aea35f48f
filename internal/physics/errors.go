package physics

import "errors"

var (
	// ErrUnknownBody indicates a body id that is not registered with the world.
	ErrUnknownBody = errors.New("physics: unknown body")

	// ErrDuplicateBody indicates a body id registered twice.
	ErrDuplicateBody = errors.New("physics: duplicate body")

	// ErrDuplicateCollider indicates a collider id registered twice.
	ErrDuplicateCollider = errors.New("physics: duplicate collider")

	// ErrInvalidShape indicates a collider with non-positive dimensions.
	ErrInvalidShape = errors.New("physics: invalid collider shape")

	ErrUnknownConstraint = errors.New("physics: unknown constraint")
)
