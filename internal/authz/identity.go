package authz

import (
	"context"
	"fmt"
	"strings"
)

// IdentityResolver maps a verified external identity to the internal
// account id. It is idempotent and side-effect free; account provisioning
// happens elsewhere.
type IdentityResolver struct {
	store Store
}

// NewIdentityResolver constructs a resolver over the given store.
func NewIdentityResolver(store Store) (*IdentityResolver, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	return &IdentityResolver{store: store}, nil
}

// Resolve returns the internal account id for the identity. A missing
// mapping surfaces as ErrNoAccount, a reportable condition distinct from
// any permission outcome.
func (r *IdentityResolver) Resolve(ctx context.Context, id ExternalIdentity) (string, error) {
	provider := strings.TrimSpace(id.Provider)
	subject := strings.TrimSpace(id.Subject)
	if provider == "" || subject == "" {
		return "", fmt.Errorf("%w: provider and subject are required", ErrInvalidInput)
	}
	accountID, err := r.store.LookupAccount(ctx, provider, subject)
	if err != nil {
		return "", err
	}
	if accountID == "" {
		return "", ErrNoAccount
	}
	return accountID, nil
}
