package authz

import "errors"

var (
	// ErrNoAccount is returned by identity resolution when the external
	// identity has no internal account yet. Callers must report it as its
	// own condition, never coerce it into a permission denial.
	ErrNoAccount = errors.New("authz: no account for external identity")

	// ErrNotFound is returned by store lookups when the target row is
	// absent (workspace, resource, account).
	ErrNotFound = errors.New("authz: not found")

	// ErrUnavailable wraps any account store communication failure. The
	// engine fails closed on it and keeps it distinct from Forbidden so
	// an outage is never masked as a permission bug.
	ErrUnavailable = errors.New("authz: account store unavailable")

	// ErrInvalidInput is returned when a caller passes structurally
	// invalid arguments (empty ids, unknown capability names).
	ErrInvalidInput = errors.New("authz: invalid input")
)

// reasonForError maps a store error onto the decision taxonomy.
func reasonForError(err error) Reason {
	switch {
	case errors.Is(err, ErrUnavailable):
		return ReasonUnavailable
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoAccount):
		return ReasonNotFound
	}
	// Unknown store errors fail closed as unavailable rather than
	// masquerading as a permission outcome.
	return ReasonUnavailable
}
