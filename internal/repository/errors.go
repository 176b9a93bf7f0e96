package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means a conditional write lost against a concurrent one.
	ErrConflict = errors.New("conflict")
	// ErrTxAborted means the store refused to commit; the whole transaction
	// may be retried.
	ErrTxAborted = errors.New("transaction aborted")
)
