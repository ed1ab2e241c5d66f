package classes

import "fmt"

// InvalidArgumentError reports malformed input to a definition or tracker
// operation, such as an empty class name or a blank field name.
type InvalidArgumentError struct {
	Op      string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument: %s", e.Op, e.Message)
}

// UndefinedFieldError reports an operation referencing a field name that was
// never defined on the target object.
type UndefinedFieldError struct {
	Object string
	Field  string
}

func (e *UndefinedFieldError) Error() string {
	return fmt.Sprintf("%s: field %q is not defined", e.Object, e.Field)
}

// DefinedOnClassError reports an attempt to write, through an instance, a
// field that belongs to the class definition. Methods must be invoked, not
// assigned over.
type DefinedOnClassError struct {
	Class string
	Field string
}

func (e *DefinedOnClassError) Error() string {
	return fmt.Sprintf("field %q is defined on class %s and cannot be written through an instance", e.Field, e.Class)
}

// ReadOnlyFieldError reports a write to a field protected as read-only.
type ReadOnlyFieldError struct {
	Object string
	Field  string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("%s: field %q is read-only", e.Object, e.Field)
}

func errInvalidArgument(op string, format string, args ...any) error {
	return &InvalidArgumentError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func errUndefinedField(object, field string) error {
	return &UndefinedFieldError{Object: object, Field: field}
}

func errDefinedOnClass(class, field string) error {
	return &DefinedOnClassError{Class: class, Field: field}
}

func errReadOnlyField(object, field string) error {
	return &ReadOnlyFieldError{Object: object, Field: field}
}
