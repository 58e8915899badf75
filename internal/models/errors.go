package models

import "errors"

var (
	// ErrNotFound means the record does not exist or belongs to another user.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique value is already taken.
	ErrConflict = errors.New("already exists")
)
