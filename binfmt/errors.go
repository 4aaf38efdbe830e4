package binfmt

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidStream matches every InvalidStreamError through errors.Is.
var ErrInvalidStream = errors.New("invalid stream")

// InvalidStreamError reports a corrupt stream: a bad header, an unknown
// value or node tag, or a reference outside a dictionary. Reading cannot
// continue past it.
type InvalidStreamError struct {
	Msg string
	Err error
}

func (e *InvalidStreamError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, io.ErrUnexpectedEOF) {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *InvalidStreamError) Unwrap() error {
	return e.Err
}

func (e *InvalidStreamError) Is(target error) bool {
	return target == ErrInvalidStream
}

func invalidf(format string, args ...any) error {
	return &InvalidStreamError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedVersionError reports a version token which cannot be read, or
// a generation which cannot be written.
type UnsupportedVersionError struct {
	Version uint16
}

func (e *UnsupportedVersionError) Error() string {
	if v := Version(e.Version); v.Known() {
		return fmt.Sprintf("unsupported stream version %s (%d)", v, e.Version)
	}
	return fmt.Sprintf("unsupported stream version %d", e.Version)
}

// UnsupportedValueError reports a leaf value, path argument or node which the
// writer's generation has no encoding for.
type UnsupportedValueError struct {
	Version Version
	Value   any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("%s streams cannot encode %T", e.Version, e.Value)
}
