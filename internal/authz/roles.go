package authz

import (
	"context"
	"fmt"
)

// Evaluation is the per-request authorization state for one account. It
// memoizes the system role and already-resolved scope memberships so that
// the admin guard and a later resource check in the same handler chain do
// not repeat store round-trips. An Evaluation belongs to exactly one
// request and must never outlive it: role state lives in the store and is
// re-read fresh on the next request.
type Evaluation struct {
	store     Store
	accountID string

	sysRole     *SystemRole
	memberships map[string]Role
	orgOf       map[string]string
}

// NewEvaluation starts an evaluation for the account.
func NewEvaluation(store Store, accountID string) (*Evaluation, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	return &Evaluation{
		store:       store,
		accountID:   accountID,
		memberships: make(map[string]Role),
		orgOf:       make(map[string]string),
	}, nil
}

// AccountID returns the account this evaluation belongs to.
func (e *Evaluation) AccountID() string {
	return e.accountID
}

// SystemRole returns the account's system role, looked up at most once per
// evaluation.
func (e *Evaluation) SystemRole(ctx context.Context) (SystemRole, error) {
	if e.sysRole != nil {
		return *e.sysRole, nil
	}
	role, err := e.store.SystemRole(ctx, e.accountID)
	if err != nil {
		return SystemNone, err
	}
	e.sysRole = &role
	return role, nil
}

// RoleAt resolves the account's role at the given scope.
//
// Organization scope is a single membership lookup. Workspace scope first
// resolves the enclosing organization and checks organization membership;
// absence there short-circuits to none regardless of any workspace row.
// The two levels are never combined by taking a maximum: a workspace role
// is only meaningful once organization membership already holds.
func (e *Evaluation) RoleAt(ctx context.Context, scope Scope) (Role, error) {
	switch scope.Kind {
	case ScopeOrganization:
		return e.membership(ctx, scope.ID)
	case ScopeWorkspace:
		orgID, err := e.enclosingOrg(ctx, scope.ID)
		if err != nil {
			return RoleNone, err
		}
		orgRole, err := e.membership(ctx, orgID)
		if err != nil {
			return RoleNone, err
		}
		if orgRole == RoleNone {
			return RoleNone, nil
		}
		return e.membership(ctx, scope.ID)
	}
	return RoleNone, fmt.Errorf("%w: unknown scope kind %q", ErrInvalidInput, scope.Kind)
}

func (e *Evaluation) membership(ctx context.Context, scopeID string) (Role, error) {
	if scopeID == "" {
		return RoleNone, fmt.Errorf("%w: scope id is required", ErrInvalidInput)
	}
	if role, ok := e.memberships[scopeID]; ok {
		return role, nil
	}
	role, err := e.store.ScopeMembership(ctx, e.accountID, scopeID)
	if err != nil {
		return RoleNone, err
	}
	e.memberships[scopeID] = role
	return role, nil
}

func (e *Evaluation) enclosingOrg(ctx context.Context, workspaceID string) (string, error) {
	if orgID, ok := e.orgOf[workspaceID]; ok {
		return orgID, nil
	}
	orgID, err := e.store.WorkspaceOrg(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	e.orgOf[workspaceID] = orgID
	return orgID, nil
}
