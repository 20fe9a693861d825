package services

import "errors"

// Common service-level errors
var (
	ErrNoteNotFound = errors.New("note not found")
	ErrTodoNotFound = errors.New("todo not found")

	// ErrNoBackup is returned by restore when nothing has been backed up
	ErrNoBackup = errors.New("no backup data")
)
