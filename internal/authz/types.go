package authz

import (
	"fmt"
	"strings"
)

// ExternalIdentity is the verified (provider, subject) pair produced by the
// credential verifier. It is a lookup key only and is never persisted here.
type ExternalIdentity struct {
	Provider string
	Subject  string
}

func (id ExternalIdentity) String() string {
	return id.Provider + ":" + id.Subject
}

// Role is the membership level an account holds at a scope. The values form
// a total order: none < member < admin < owner.
type Role uint8

const (
	RoleNone Role = iota
	RoleMember
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleNone:   "none",
	RoleMember: "member",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "none"
}

// AtLeast reports whether r sits at or above min in the role order.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole converts a stored role name into a Role. Unknown names are
// rejected rather than coerced to none.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "none", "":
		return RoleNone, nil
	case "member":
		return RoleMember, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	}
	return RoleNone, fmt.Errorf("authz: unknown role %q", s)
}

// SystemRole is the account's role at system scope, independent of any
// organization or workspace membership.
type SystemRole uint8

const (
	SystemNone SystemRole = iota
	SystemAdmin
	SystemOwner
)

func (r SystemRole) String() string {
	switch r {
	case SystemAdmin:
		return "sys_admin"
	case SystemOwner:
		return "sys_owner"
	}
	return "none"
}

// Admin reports whether the system role carries system-administration rights.
func (r SystemRole) Admin() bool {
	return r == SystemAdmin || r == SystemOwner
}

// ParseSystemRole converts a stored system role name into a SystemRole.
func ParseSystemRole(s string) (SystemRole, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "none", "":
		return SystemNone, nil
	case "sys_admin":
		return SystemAdmin, nil
	case "sys_owner":
		return SystemOwner, nil
	}
	return SystemNone, fmt.Errorf("authz: unknown system role %q", s)
}

// ScopeKind distinguishes the two nested scope levels below system.
type ScopeKind string

const (
	ScopeOrganization ScopeKind = "organization"
	ScopeWorkspace    ScopeKind = "workspace"
)

// Scope identifies an organization or workspace boundary.
type Scope struct {
	ID   string
	Kind ScopeKind
}

// OrgScope builds an organization scope.
func OrgScope(id string) Scope {
	return Scope{ID: id, Kind: ScopeOrganization}
}

// WorkspaceScope builds a workspace scope.
func WorkspaceScope(id string) Scope {
	return Scope{ID: id, Kind: ScopeWorkspace}
}

// Capability is the access level carried by a shared grant.
type Capability string

const (
	CapabilityView Capability = "view"
	CapabilityEdit Capability = "edit"
)

// ParseCapability validates a capability name from a request or a stored row.
func ParseCapability(s string) (Capability, error) {
	switch Capability(strings.TrimSpace(strings.ToLower(s))) {
	case CapabilityView:
		return CapabilityView, nil
	case CapabilityEdit:
		return CapabilityEdit, nil
	}
	return "", fmt.Errorf("authz: unknown capability %q", s)
}

// SharedGrant gives a non-owning account view or edit access to a resource.
type SharedGrant struct {
	AccountID  string
	Capability Capability
}

// Resource is a domain record gated by ownership and sharing, never by
// scope role.
type Resource struct {
	ID      string
	OwnerID string
	Grants  []SharedGrant
}

// RouteClass is the static classification attached to a route at
// registration time. The guard never infers it from verb or path shape.
type RouteClass string

const (
	RouteSystemAdmin       RouteClass = "system_admin"
	RouteOrganizationAdmin RouteClass = "organization_admin"
	RouteResourceAdmin     RouteClass = "resource_admin"
	RouteData              RouteClass = "data"
)
