package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tenantgate.org/internal/authz"
	"tenantgate.org/internal/obs"
)

var _ authz.Store = (*Store)(nil)

// Every method below maps sql.ErrNoRows onto the engine's absence
// sentinels and any other driver or network failure onto ErrUnavailable.
// The engine fails closed on ErrUnavailable; mapping an outage to a
// permission outcome here would mask it as a bug.

func (s *Store) LookupAccount(ctx context.Context, provider, subject string) (_ string, err error) {
	defer observe("lookup_account", &err)
	var accountID string
	err = s.db.QueryRowContext(ctx, `
		select account_id
		from external_identities
		where provider = $1 and subject = $2
	`, provider, subject).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", authz.ErrNoAccount
	}
	if err != nil {
		return "", unavailable("lookup account", err)
	}
	return accountID, nil
}

func (s *Store) SystemRole(ctx context.Context, accountID string) (_ authz.SystemRole, err error) {
	defer observe("system_role", &err)
	var raw string
	err = s.db.QueryRowContext(ctx, `
		select system_role from accounts where id = $1
	`, accountID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return authz.SystemNone, authz.ErrNotFound
	}
	if err != nil {
		return authz.SystemNone, unavailable("get system role", err)
	}
	role, err := authz.ParseSystemRole(raw)
	if err != nil {
		return authz.SystemNone, fmt.Errorf("account %s: %w", accountID, err)
	}
	return role, nil
}

func (s *Store) ScopeMembership(ctx context.Context, accountID, scopeID string) (_ authz.Role, err error) {
	defer observe("scope_membership", &err)
	var raw string
	err = s.db.QueryRowContext(ctx, `
		select role
		from scope_memberships
		where account_id = $1 and scope_id = $2 and removed_at is null
	`, accountID, scopeID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		// Membership absence is role none, not an error.
		return authz.RoleNone, nil
	}
	if err != nil {
		return authz.RoleNone, unavailable("get scope membership", err)
	}
	role, err := authz.ParseRole(raw)
	if err != nil {
		return authz.RoleNone, fmt.Errorf("membership %s@%s: %w", accountID, scopeID, err)
	}
	return role, nil
}

func (s *Store) WorkspaceOrg(ctx context.Context, workspaceID string) (_ string, err error) {
	defer observe("workspace_org", &err)
	var orgID string
	err = s.db.QueryRowContext(ctx, `
		select organization_id from workspaces where id = $1
	`, workspaceID).Scan(&orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", authz.ErrNotFound
	}
	if err != nil {
		return "", unavailable("resolve workspace org", err)
	}
	return orgID, nil
}

func (s *Store) Resource(ctx context.Context, resourceID string) (_ authz.Resource, err error) {
	defer observe("resource", &err)
	res := authz.Resource{ID: resourceID}
	err = s.db.QueryRowContext(ctx, `
		select owner_id from resources where id = $1
	`, resourceID).Scan(&res.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return authz.Resource{}, authz.ErrNotFound
	}
	if err != nil {
		return authz.Resource{}, unavailable("get resource", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		select account_id, capability
		from resource_grants
		where resource_id = $1
	`, resourceID)
	if err != nil {
		return authz.Resource{}, unavailable("list resource grants", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			rawCap    string
		)
		if err = rows.Scan(&accountID, &rawCap); err != nil {
			return authz.Resource{}, unavailable("scan resource grant", err)
		}
		var capability authz.Capability
		capability, err = authz.ParseCapability(rawCap)
		if err != nil {
			return authz.Resource{}, fmt.Errorf("resource %s: %w", resourceID, err)
		}
		res.Grants = append(res.Grants, authz.SharedGrant{AccountID: accountID, Capability: capability})
	}
	if err = rows.Err(); err != nil {
		return authz.Resource{}, unavailable("iterate resource grants", err)
	}
	return res, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", authz.ErrUnavailable, op, err)
}

func observe(op string, err *error) {
	switch {
	case *err == nil:
		obs.ObserveStoreQuery(op, "ok")
	case errors.Is(*err, authz.ErrNoAccount), errors.Is(*err, authz.ErrNotFound):
		obs.ObserveStoreQuery(op, "absent")
	default:
		obs.ObserveStoreQuery(op, "error")
	}
}
