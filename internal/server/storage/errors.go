package storage

import "errors"

// Common storage errors
var (
	// ErrDatabaseNotFound indicates that database does not exist
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrCollectionNotFound indicates that collection does not exist
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDocumentNotFound indicates that document does not exist or is deleted
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentExists indicates that a live document with this id already exists
	ErrDocumentExists = errors.New("document already exists")

	// ErrPreconditionFailed indicates that If-Match does not match the current ETag
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflictNotFound indicates that conflict feed entry was not found
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrCrossPartitionRequired indicates a query without partition key and without cross-partition flag
	ErrCrossPartitionRequired = errors.New("cross partition query is required but disabled")

	// ErrInvalidFilter indicates a query filter on a field name that is not allowed
	ErrInvalidFilter = errors.New("invalid query filter")
)
