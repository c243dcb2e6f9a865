package entity

import "errors"

var (
	// ErrImageNotFound is returned when an image id has no matching row.
	// Callers render it as a missing resource rather than a store fault.
	ErrImageNotFound = errors.New("image not found")

	// ErrTagNotFound is returned when a tag id has no matching row.
	ErrTagNotFound = errors.New("tag not found")

	// ErrConflictingFilter is returned when a query supplies both an all-of
	// and an any-of tag filter.
	ErrConflictingFilter = errors.New("conflicting tag filters")
)
