package provider

import "errors"

var (
	// ErrInvalidTarget means the URI is not routed by the schema or does not
	// support the requested operation. Retrying will not help.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrInvalidColumn is returned for projection or value keys outside the
	// target's allowed columns.
	ErrInvalidColumn = errors.New("invalid column")

	ErrInvalidSortOrder = errors.New("invalid sort order")

	// ErrNoValues is returned for an update that names no columns.
	ErrNoValues = errors.New("no values to update")

	// ErrNotFound means a lookup that requires a row found none.
	ErrNotFound = errors.New("not found")

	// ErrWriteFailed wraps insert, update and delete failures from the store.
	ErrWriteFailed = errors.New("write failed")

	ErrStreamUnsupported = errors.New("no stream type matches")
)
