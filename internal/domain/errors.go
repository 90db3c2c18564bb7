package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrScopeMismatch is returned when a snapshot's embedded event id disagrees
	// with the event it is being imported into. No writes happen in that case.
	ErrScopeMismatch = errors.New("snapshot event id does not match target event")
	// ErrEventBusy is returned when another import or reset holds the event lock.
	ErrEventBusy = errors.New("event is locked by another operation")
	// ErrDuplicateSlug is returned when an event slug is already taken.
	ErrDuplicateSlug = errors.New("slug already in use")
	// ErrInvalidInput marks a request that failed domain-level validation.
	ErrInvalidInput = errors.New("invalid input")
)
