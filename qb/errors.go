package qb

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTable is returned when a builder is compiled without a FROM target.
	ErrNoTable = errors.New("qb: no table set")

	// ErrUnsupportedOperator is returned when a predicate uses an operator
	// outside the dialect's allow-list.
	ErrUnsupportedOperator = errors.New("qb: unsupported operator")
)

// BuilderError wraps a construction failure with the clause that caused it.
// It is always raised before any I/O happens.
type BuilderError struct {
	Err    error
	Detail string
}

func (e *BuilderError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *BuilderError) Unwrap() error { return e.Err }

func noTableErr() error {
	return &BuilderError{Err: ErrNoTable}
}

func unsupportedOperatorErr(op string) error {
	return &BuilderError{Err: ErrUnsupportedOperator, Detail: op}
}
