package encode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMember is wrapped when a document names a node the schema
	// does not have.
	ErrUnknownMember = errors.New("unknown member")
	// ErrMissingModule is wrapped when a QName's module is not in the
	// registry.
	ErrMissingModule = errors.New("module not present")
	// ErrBadValue is wrapped when a value does not match its leaf type.
	ErrBadValue = errors.New("bad value")
	// ErrUnsupportedRoot is returned for nodes which cannot head a
	// document.
	ErrUnsupportedRoot = errors.New("unsupported document root")
)

// Error reports a failure at a position of a document.
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Msg
	if e.Path != "" {
		s = e.Path + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(path string, err error, format string, args ...any) error {
	return &Error{Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}
