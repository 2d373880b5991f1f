// Package core provides the prompt aggregate, version types, and the pure
// version-numbering and ordering rules for the weft framework.
package core

import "errors"

// Sentinel errors for version lifecycle operations. All are expected,
// recoverable conditions for callers to branch on with errors.Is.
var (
	// ErrNotFound means the referenced prompt or version does not exist
	// in the expected scope.
	ErrNotFound = errors.New("prompt or version not found")

	// ErrCurrentVersionProtected means a delete targeted the version that
	// is currently in effect.
	ErrCurrentVersionProtected = errors.New("current version cannot be deleted")

	// ErrLastVersionProtected means a soft delete would leave the prompt
	// with no active version.
	ErrLastVersionProtected = errors.New("last active version cannot be deleted")

	// ErrNotDeleted means a restore-from-trash targeted a version that is
	// not soft-deleted.
	ErrNotDeleted = errors.New("version is not soft-deleted")

	// ErrDeleted means a restore-as-current targeted a soft-deleted version.
	// Trash entries must be recovered to the active set first.
	ErrDeleted = errors.New("version is soft-deleted")

	// ErrStoreFailure wraps errors from the record store collaborator.
	// The underlying message is passed through, not reinterpreted.
	ErrStoreFailure = errors.New("record store failure")

	// ErrInvalidVersionNumber is returned when a version number does not
	// parse as "<major>.<minor>".
	ErrInvalidVersionNumber = errors.New("invalid version number format")
)

// InvariantError reports an aggregate that violates one of the prompt
// invariants. It indicates a programming or storage-corruption error,
// not a user-facing condition.
type InvariantError struct {
	PromptID string
	Message  string
}

func (e *InvariantError) Error() string {
	return "prompt " + e.PromptID + ": " + e.Message
}
