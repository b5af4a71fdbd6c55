package domain

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectExists     = errors.New("project already exists")
	ErrInvalidStatus     = errors.New("invalid project status")
	ErrInvalidTransition = errors.New("invalid project status transition")

	ErrUnauthenticated = errors.New("please sign in to create a project")
	ErrNameRequired    = errors.New("please enter a project name")
	ErrURLRequired     = errors.New("please enter a target URL")
	ErrInvalidURL      = errors.New("please enter a valid URL")
	ErrPrivateURL      = errors.New("private and local network addresses cannot be scraped")
	ErrNoDataTypes     = errors.New("please select at least one data type to extract")
)

// IsValidation reports whether err is one of the form validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrURLRequired) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrPrivateURL) ||
		errors.Is(err, ErrNoDataTypes)
}
