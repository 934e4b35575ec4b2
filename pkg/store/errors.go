package store

import "errors"

var (
	// ErrNotFound is returned when no record exists for a file ID.
	ErrNotFound = errors.New("file record not found")

	// ErrNoContent is returned when a store call carries no content.
	ErrNoContent = errors.New("no content to store")

	// ErrContentTooLarge is returned when content exceeds the configured
	// size limit.
	ErrContentTooLarge = errors.New("content exceeds maximum file size")

	// ErrEmptyExport is returned when an export resolves zero records.
	ErrEmptyExport = errors.New("no files found to export")

	// ErrMissingFile is returned when an index entry's file is absent on
	// disk. This is a reportable inconsistency, never auto-repaired.
	ErrMissingFile = errors.New("file referenced by index is missing on disk")
)
