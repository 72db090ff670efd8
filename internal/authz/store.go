package authz

import "context"

// Store is the account store query contract the engine depends on. All
// reads happen fresh per request; the engine never caches across requests
// because role state is mutable behind its back. Implementations must
// wrap communication failures in ErrUnavailable and respect context
// cancellation rather than swallowing it.
type Store interface {
	// LookupAccount maps a verified external identity to the internal
	// account id. Returns ErrNoAccount when no mapping exists.
	LookupAccount(ctx context.Context, provider, subject string) (string, error)

	// SystemRole returns the account's role at system scope. Returns
	// ErrNotFound for an unknown account.
	SystemRole(ctx context.Context, accountID string) (SystemRole, error)

	// ScopeMembership returns the account's role at the given scope.
	// Membership absence is RoleNone with a nil error, not an error.
	ScopeMembership(ctx context.Context, accountID, scopeID string) (Role, error)

	// WorkspaceOrg resolves the single enclosing organization of a
	// workspace. Returns ErrNotFound for an unknown workspace.
	WorkspaceOrg(ctx context.Context, workspaceID string) (string, error)

	// Resource loads a resource's owner and shared grants. Returns
	// ErrNotFound when the resource is absent.
	Resource(ctx context.Context, resourceID string) (Resource, error)
}
