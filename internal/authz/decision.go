package authz

// Reason classifies a negative authorization outcome. Every component in
// this package reports exactly one of these five kinds; there is no generic
// internal error.
type Reason uint8

const (
	// ReasonNone marks an allowed decision.
	ReasonNone Reason = iota
	// ReasonUnauthenticated: no internal account could be resolved.
	ReasonUnauthenticated
	// ReasonScopeRequired: a scope-dependent route received no scope id.
	ReasonScopeRequired
	// ReasonForbidden: identity and scope are well formed but the role or
	// ownership check failed.
	ReasonForbidden
	// ReasonNotFound: the target is absent, or the caller holds no view
	// capability on it and must not learn that it exists.
	ReasonNotFound
	// ReasonUnavailable: the account store could not be reached. Fail
	// closed; never coerced into ReasonForbidden.
	ReasonUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "allow"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonScopeRequired:
		return "scope_required"
	case ReasonForbidden:
		return "forbidden"
	case ReasonNotFound:
		return "not_found"
	case ReasonUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Decision is the tri-state result every check returns to callers: Allow,
// or Deny carrying one taxonomy reason. Never a bare boolean, so callers
// can map reasons to distinct wire-level status codes.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}
	return "deny:" + d.Reason.String()
}
