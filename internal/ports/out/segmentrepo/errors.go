package segmentrepo

import "errors"

var (
	ErrNotFound        = errors.New("segment not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrAlreadyExists   = errors.New("segment already exists")

	// ErrInvalidOrder indicates a reorder sequence that does not match the
	// version's segment set exactly.
	ErrInvalidOrder = errors.New("invalid segment order")
)
