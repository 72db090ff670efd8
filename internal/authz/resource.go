package authz

import "context"

// Resource permission is decided by ownership and sharing alone. These
// signatures deliberately accept no role or admin status of any kind, so
// the admin-override shortcut is structurally unavailable: an organization
// owner with no grant on a record cannot read it, and any code path that
// reintroduces an override here is a defect.

// CanView reports whether the account owns the resource or holds any
// shared grant on it.
func CanView(accountID string, res Resource) bool {
	if accountID == "" {
		return false
	}
	if res.OwnerID == accountID {
		return true
	}
	for _, g := range res.Grants {
		if g.AccountID == accountID {
			return true
		}
	}
	return false
}

// CanEdit reports whether the account owns the resource or holds an edit
// grant on it.
func CanEdit(accountID string, res Resource) bool {
	if accountID == "" {
		return false
	}
	if res.OwnerID == accountID {
		return true
	}
	for _, g := range res.Grants {
		if g.AccountID == accountID && g.Capability == CapabilityEdit {
			return true
		}
	}
	return false
}

// ResourceAccess folds ownership and sharing into a decision for one
// capability. A caller without view capability is told the resource does
// not exist, so denied probing is indistinguishable from true absence; a
// caller who can view but not edit gets a plain forbidden, since existence
// is already known to them.
func ResourceAccess(accountID string, res Resource, capability Capability) Decision {
	switch capability {
	case CapabilityView:
		if CanView(accountID, res) {
			return Allow
		}
		return Deny(ReasonNotFound)
	case CapabilityEdit:
		if CanEdit(accountID, res) {
			return Allow
		}
		if CanView(accountID, res) {
			return Deny(ReasonForbidden)
		}
		return Deny(ReasonNotFound)
	}
	return Deny(ReasonForbidden)
}

// ResourceDecision loads the resource and evaluates the capability for the
// evaluation's account. Callers must have already verified plain
// organization membership for the request's scope, once per request,
// before reaching this; that precondition prevents cross-organization
// probing by resource id guessing and is distinct from the ownership
// check performed here.
func (e *Evaluation) ResourceDecision(ctx context.Context, resourceID string, capability Capability) (Resource, Decision) {
	res, err := e.store.Resource(ctx, resourceID)
	if err != nil {
		return Resource{}, Deny(reasonForError(err))
	}
	return res, ResourceAccess(e.accountID, res, capability)
}
