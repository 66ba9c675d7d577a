package storage

import "fmt"

// ConnectionError is returned once connection acquisition has exhausted its
// retry policy. It is fatal to a run.
type ConnectionError struct {
	Kind     string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("storage: connect %s failed after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError is returned when the article table cannot be ensured.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("storage: ensure schema %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// StoreError is returned by store round-trips after the schema is in place
// (batch upsert, row count). The failed batch left no rows behind.
type StoreError struct {
	Op  string // "upsert", "count"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
