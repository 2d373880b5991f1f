package store

import (
	"errors"
	"fmt"

	"github.com/weftlabs/weft/core"
)

// WireError is the JSON error body exchanged between the weft server and the
// Remote store, so typed failures survive the HTTP round trip.
type WireError struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"error"`
}

// Wire error kinds.
const (
	KindNotFound                = "not_found"
	KindCurrentVersionProtected = "current_version_protected"
	KindLastVersionProtected    = "last_version_protected"
	KindNotDeleted              = "not_deleted"
	KindDeleted                 = "version_deleted"
	KindInvariant               = "invariant_violation"
	KindBadRequest              = "bad_request"
)

// KindOf maps a lifecycle error to its wire kind, or "" for untyped errors.
func KindOf(err error) string {
	var ie *core.InvariantError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return KindNotFound
	case errors.Is(err, core.ErrCurrentVersionProtected):
		return KindCurrentVersionProtected
	case errors.Is(err, core.ErrLastVersionProtected):
		return KindLastVersionProtected
	case errors.Is(err, core.ErrNotDeleted):
		return KindNotDeleted
	case errors.Is(err, core.ErrDeleted):
		return KindDeleted
	case errors.Is(err, core.ErrInvalidVersionNumber):
		return KindBadRequest
	case errors.As(err, &ie):
		return KindInvariant
	default:
		return ""
	}
}

// Err reconstructs the typed error on the client side. Unknown kinds become
// a StoreFailure carrying the server's message verbatim.
func (w *WireError) Err() error {
	switch w.Kind {
	case KindNotFound:
		return core.ErrNotFound
	case KindCurrentVersionProtected:
		return core.ErrCurrentVersionProtected
	case KindLastVersionProtected:
		return core.ErrLastVersionProtected
	case KindNotDeleted:
		return core.ErrNotDeleted
	case KindDeleted:
		return core.ErrDeleted
	default:
		return fmt.Errorf("%w: %s", core.ErrStoreFailure, w.Message)
	}
}
