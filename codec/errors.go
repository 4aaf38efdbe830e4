package codec

import (
	"fmt"
	"reflect"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/qname"
)

// MissingSchemaForClassError reports a binding type which no schema node is
// bound to.
type MissingSchemaForClassError struct {
	Type reflect.Type
}

func (e *MissingSchemaForClassError) Error() string {
	return "missing schema for class " + binding.TypeName(e.Type)
}

// MissingSchemaError reports a qualified name whose module is not part of
// the schema.
type MissingSchemaError struct {
	Module qname.Module
}

func (e *MissingSchemaError) Error() string {
	return fmt.Sprintf("Module %s is not present in current schema context.", e.Module)
}

// MissingClassInLoadingStrategyError reports a type known to the schema
// which the type loader refused to provide. The failure is not cached; a
// later request consults the loader again.
type MissingClassInLoadingStrategyError struct {
	Name string
	Err  error
}

func (e *MissingClassInLoadingStrategyError) Error() string {
	return fmt.Sprintf("User supplied class %s is not available in the type loader: %v", e.Name, e.Err)
}

func (e *MissingClassInLoadingStrategyError) Unwrap() error {
	return e.Err
}

// IncorrectNestingError reports a child which exists in the schema but not
// where it was requested.
type IncorrectNestingError struct {
	Message string
}

func (e *IncorrectNestingError) Error() string {
	return "incorrect nesting: " + e.Message
}

func incorrectNesting(format string, args ...any) error {
	return &IncorrectNestingError{Message: fmt.Sprintf(format, args...)}
}

// IllegalArgumentError reports input of the wrong shape.
type IllegalArgumentError struct {
	Message string
}

func (e *IllegalArgumentError) Error() string {
	return e.Message
}

func illegalArgument(format string, args ...any) error {
	return &IllegalArgumentError{Message: fmt.Sprintf(format, args...)}
}
