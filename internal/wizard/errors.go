package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errNameRequired    = errors.New("name is required")
	errNameInvalid     = errors.New("name must be 1-40 lowercase alphanumeric characters or hyphens, starting with a letter")
	errCountInvalid    = errors.New("count must be a whole number between 1 and 20")
	errPasswordTooWeak = errors.New("password must be empty or at least 8 characters")
	errTypeRequired    = errors.New("machine type is required")
)
