package spas

import "errors"

var (
	// ErrSpaNotFound is returned when no spa matches the given id.
	ErrSpaNotFound = errors.New("spa not found")

	// ErrSpaInactive is returned when a widget asks for a deactivated spa.
	ErrSpaInactive = errors.New("spa is not active")

	// ErrDuplicateSpaID is returned when creating a spa whose id is taken.
	ErrDuplicateSpaID = errors.New("spa id already exists")
)
