package widget

import "errors"

// Config resolution failures are terminal for a widget session; the UI shows
// the unavailable panel instead of the chat.
var (
	// ErrMissingTenantID is returned when no spa id could be derived.
	ErrMissingTenantID = errors.New("missing spa id")

	// ErrConfigUnavailable is returned when the config fetch fails or the
	// spa is inactive.
	ErrConfigUnavailable = errors.New("spa config unavailable")
)

// Submission failures are recoverable; the visitor stays on the booking form.
var (
	// ErrMissingFields is returned when name or phone is blank.
	ErrMissingFields = errors.New("name and phone are required")

	// ErrInvalidPhone is returned when the phone fails format validation.
	ErrInvalidPhone = errors.New("phone must be a valid 10 digit mobile number")

	// ErrSubmitFailed is returned when the lead could not be delivered.
	ErrSubmitFailed = errors.New("booking submission failed")

	// ErrSubmitInFlight is returned when a submit arrives while another is
	// outstanding. The duplicate attempt is a no-op.
	ErrSubmitInFlight = errors.New("submission already in flight")
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("widget session not found")
)
