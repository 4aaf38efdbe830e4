package normalized

import (
	"errors"
	"fmt"
)

var (
	ErrNoResult    = errors.New("no result")
	ErrUnbalanced  = errors.New("unbalanced stream events")
	ErrDuplicate   = errors.New("duplicate child")
	ErrUnsupported = errors.New("unsupported node")
)

// WriterError reports an event which does not fit the current writer state.
type WriterError struct {
	Event   string
	Message string
	Err     error
}

func (e *WriterError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("stream writer error at %s: %s", e.Event, e.Message)
	}
	return fmt.Sprintf("stream writer error: %s", e.Message)
}

func (e *WriterError) Unwrap() error {
	return e.Err
}
