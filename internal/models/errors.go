package models

// ValidationError is a client error: the request is well-formed JSON but
// asks for something the document rules forbid.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// NewValidationError is for validation failures detected outside this
// package.
func NewValidationError(msg string) error { return invalid(msg) }
