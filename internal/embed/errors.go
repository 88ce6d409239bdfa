package embed

import "errors"

var (
	// ErrAlreadyLoaded is returned when bootstrap runs twice on one page,
	// either via the lifecycle flag or an existing mount point.
	ErrAlreadyLoaded = errors.New("widget already loaded")

	// ErrMissingScriptElement is returned when the loader cannot locate its
	// own script tag.
	ErrMissingScriptElement = errors.New("loader script element not found")

	// ErrMissingTenantID is returned when no spa id is present in the script
	// URL, the data attribute, or the page global.
	ErrMissingTenantID = errors.New("missing spa id")
)
