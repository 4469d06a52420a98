package core

import "fmt"

// NotFoundError reports that a named entity does not exist in the store.
// Lineage queries never return it: a query with no matching start node
// yields an empty result instead. It is reserved for operations that
// require an exact entity, such as impact analysis.
type NotFoundError struct {
	Kind string // "dataset" or "job"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// ValidationError reports malformed input: a run referencing unregistered
// entities, an unsupported export format, or an out-of-range query
// parameter.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
