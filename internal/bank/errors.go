package bank

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a question does not exist or the id names
// a passage child.
var ErrNotFound = errors.New("question not found")

// FieldError is used to indicate an error with a specific question field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports every rule a question draft breaks. It is
// returned before anything is written.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Error
	}
	return "invalid question: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a store failure. The caller's draft is untouched
// and the operation may be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s question: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
