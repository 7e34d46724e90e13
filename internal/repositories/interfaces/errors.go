package interfaces

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned when a conditional update matched nothing
	// because the record changed underneath the caller.
	ErrStale = errors.New("record changed concurrently")
)
