package loom

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParentKey is returned when a relation is constructed from a
	// parent whose key attribute is unset.
	ErrMissingParentKey = errors.New("loom: parent key value is not set")

	// ErrUnresolvedMorphType is returned when a MorphTo discriminator value
	// has no registered target.
	ErrUnresolvedMorphType = errors.New("loom: unresolved morph type")

	// ErrNotManyToMany is returned when a pivot mutation is attempted through
	// a relation that is not backed by a junction table.
	ErrNotManyToMany = errors.New("loom: relation is not many-to-many")
)

// RelationError wraps a relationship resolution failure. Like builder errors
// it is raised before any statement reaches the database.
type RelationError struct {
	Err    error
	Detail string
}

func (e *RelationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *RelationError) Unwrap() error { return e.Err }

// ExecutionError wraps whatever the database driver reported. SQL and
// bindings are only populated when the connection runs in debug mode, so
// non-debug callers never leak query shapes through error text.
type ExecutionError struct {
	Err      error
	SQL      string
	Bindings []any
}

func (e *ExecutionError) Error() string {
	if e.SQL == "" {
		return fmt.Sprintf("loom: execution failed: %v", e.Err)
	}
	return fmt.Sprintf("loom: execution failed: %v (sql: %s, bindings: %v)", e.Err, e.SQL, e.Bindings)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
