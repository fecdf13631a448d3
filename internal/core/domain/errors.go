package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownLabel indicates a database label is not registered.
	ErrUnknownLabel = errors.New("unknown database label")

	// ErrNoDatabases indicates no database has been registered yet.
	ErrNoDatabases = errors.New("no databases registered")

	// ErrAmbiguousLabel indicates the label was omitted while multiple
	// databases are registered.
	ErrAmbiguousLabel = errors.New("multiple databases registered, specify a label")

	// ErrMissingCredential indicates a required API credential is not set.
	// This is fatal and is checked before any work starts.
	ErrMissingCredential = errors.New("missing credential")

	// ErrStoreEmpty indicates the store holds no documents yet.
	ErrStoreEmpty = errors.New("store is empty")

	// ErrOperationTimeout indicates a remote operation did not complete
	// within the configured poll budget.
	ErrOperationTimeout = errors.New("remote operation did not complete in time")
)
