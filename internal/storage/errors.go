package storage

import "errors"

var (
	// ErrDuplicateUser is returned when registering an email that is taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when a record id does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a collection changed between read and write.
	ErrConflict = errors.New("concurrent modification")
	// ErrStoreCorruption is returned when a stored collection cannot be decoded.
	ErrStoreCorruption = errors.New("store corruption")
)
