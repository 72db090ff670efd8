package authz

import "context"

// AuthorizeAdmin is the single-pass admin check, invoked once per request
// by the dispatch layer before any handler logic runs. The route class is
// static metadata attached at registration; nothing here inspects the verb
// or path shape.
//
// Decision table:
//
//	system_admin        sys_admin or sys_owner
//	organization_admin  scope required; sys role, or admin/owner at the org
//	resource_admin      scope required; sys role, or admin/owner at the
//	                    workspace (with the organization short-circuit)
//	data                no-op; data routes delegate to the resource
//	                    permission evaluator
func (e *Evaluation) AuthorizeAdmin(ctx context.Context, class RouteClass, scopeID string) Decision {
	switch class {
	case RouteData:
		return Allow
	case RouteSystemAdmin:
		return e.systemDecision(ctx)
	case RouteOrganizationAdmin:
		return e.scopedDecision(ctx, OrgScope(scopeID))
	case RouteResourceAdmin:
		return e.scopedDecision(ctx, WorkspaceScope(scopeID))
	}
	// Unregistered class: fail closed.
	return Deny(ReasonForbidden)
}

func (e *Evaluation) systemDecision(ctx context.Context) Decision {
	sys, err := e.SystemRole(ctx)
	if err != nil {
		return Deny(reasonForError(err))
	}
	if sys.Admin() {
		return Allow
	}
	return Deny(ReasonForbidden)
}

func (e *Evaluation) scopedDecision(ctx context.Context, scope Scope) Decision {
	if scope.ID == "" {
		// A scope-dependent class with no scope id is a malformed
		// request, reported distinctly; it is never treated as a
		// system-level check.
		return Deny(ReasonScopeRequired)
	}
	sys, err := e.SystemRole(ctx)
	if err != nil {
		return Deny(reasonForError(err))
	}
	if sys.Admin() {
		return Allow
	}
	role, err := e.RoleAt(ctx, scope)
	if err != nil {
		return Deny(reasonForError(err))
	}
	if role.AtLeast(RoleAdmin) {
		return Allow
	}
	return Deny(ReasonForbidden)
}
