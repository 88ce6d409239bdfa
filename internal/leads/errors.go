package leads

import "errors"

var (
	// ErrMissingSpaID is returned when a submission has no tenant id.
	ErrMissingSpaID = errors.New("spa id is required")

	// ErrMissingName is returned when the name field is blank.
	ErrMissingName = errors.New("name is required")

	// ErrMissingPhone is returned when the phone field is blank.
	ErrMissingPhone = errors.New("phone is required")

	// ErrInvalidPhone is returned when the phone does not match the accepted
	// ten digit format.
	ErrInvalidPhone = errors.New("phone must be a valid 10 digit mobile number")

	// ErrLeadNotFound is returned when no lead matches the given id.
	ErrLeadNotFound = errors.New("lead not found")
)
