package domain

import "fmt"

// ValidationError reports a missing or malformed input field during a load.
type ValidationError struct {
	Source string // file name, or "" for in-process callers
	Line   int    // 1-based line in Source, header included
	Field  string
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	loc := e.Field
	if e.Source != "" {
		loc = fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Field)
	}
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", loc, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", loc, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError wraps a failure returned by the store, constraint violations included.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// NotFoundError reports a lookup that matched no row.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.Key) }
