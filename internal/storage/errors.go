package storage

import "errors"

var (
	// ErrUnsupported is returned by backends that have no concept of the requested
	// operation, e.g. account management on the single-tenant file store.
	ErrUnsupported = errors.New("operation not supported by this backend")
	// ErrDuplicateEmail is returned when creating a user whose email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnknownUser is returned when writing entries for a user id with no account.
	ErrUnknownUser = errors.New("no account with this user id")
	// ErrInvalidDate is returned when a range bound is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")
)
