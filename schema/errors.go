package schema

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrTypeNotLoaded = errors.New("type not loaded")
)

// SchemaError reports a problem with a descriptor or a failed lookup.
type SchemaError struct {
	Name    string
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("schema error for %q: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("schema error: %s", e.Message)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func notFound(name, format string, args ...any) error {
	return &SchemaError{Name: name, Message: fmt.Sprintf(format, args...), Err: ErrNotFound}
}
