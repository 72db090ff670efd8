package authz

import "context"

// stubStore implements Store with overridable function fields, mirroring
// how handler tests stub their dependencies.
type stubStore struct {
	lookupAccountFn   func(ctx context.Context, provider, subject string) (string, error)
	systemRoleFn      func(ctx context.Context, accountID string) (SystemRole, error)
	scopeMembershipFn func(ctx context.Context, accountID, scopeID string) (Role, error)
	workspaceOrgFn    func(ctx context.Context, workspaceID string) (string, error)
	resourceFn        func(ctx context.Context, resourceID string) (Resource, error)
}

func (s *stubStore) LookupAccount(ctx context.Context, provider, subject string) (string, error) {
	if s.lookupAccountFn != nil {
		return s.lookupAccountFn(ctx, provider, subject)
	}
	return "", ErrNoAccount
}

func (s *stubStore) SystemRole(ctx context.Context, accountID string) (SystemRole, error) {
	if s.systemRoleFn != nil {
		return s.systemRoleFn(ctx, accountID)
	}
	return SystemNone, nil
}

func (s *stubStore) ScopeMembership(ctx context.Context, accountID, scopeID string) (Role, error) {
	if s.scopeMembershipFn != nil {
		return s.scopeMembershipFn(ctx, accountID, scopeID)
	}
	return RoleNone, nil
}

func (s *stubStore) WorkspaceOrg(ctx context.Context, workspaceID string) (string, error) {
	if s.workspaceOrgFn != nil {
		return s.workspaceOrgFn(ctx, workspaceID)
	}
	return "", ErrNotFound
}

func (s *stubStore) Resource(ctx context.Context, resourceID string) (Resource, error) {
	if s.resourceFn != nil {
		return s.resourceFn(ctx, resourceID)
	}
	return Resource{}, ErrNotFound
}
