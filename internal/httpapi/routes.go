package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tenantgate.org/internal/audit"
	"tenantgate.org/internal/authz"
	"tenantgate.org/internal/obs"
)

// route binds a mux pattern to its handler and its static route class.
type route struct {
	pattern string
	class   authz.RouteClass
	handler http.HandlerFunc
}

func (a *API) routeTable() []route {
	return []route{
		// System scope: no scope concept, so no scope extraction runs.
		{"GET /v1/system/access", authz.RouteSystemAdmin, a.SystemAccess},

		// Organization and workspace administration. The scope id rides
		// in the path, the extractor's highest-precedence source.
		{"GET /v1/orgs/{scope_id}/access", authz.RouteOrganizationAdmin, a.OrgAccess},
		{"GET /v1/workspaces/{scope_id}/access", authz.RouteResourceAdmin, a.WorkspaceAccess},

		// Data routes: the guard is a no-op here; handlers verify plain
		// organization membership and then consult ownership/sharing.
		{"GET /v1/resources/{resource_id}", authz.RouteData, a.ResourceGet},
		{"POST /v1/decisions/resource", authz.RouteData, a.ResourceDecisionCheck},
	}
}

type bodyContextKey struct{}

// withGuard runs the admin authorization check exactly once per request,
// before the handler. Data routes pass through the guard untouched and
// carry their extracted scope into the handler's context.
func (a *API) withGuard(rt route) http.Handler {
	wildcards := wildcardNames(rt.pattern)
	systemScoped := rt.class == authz.RouteSystemAdmin

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authz.PrincipalFromContext(r.Context())
		if !ok {
			respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
			return
		}
		eval, err := authz.NewEvaluation(a.store, principal.AccountID)
		if err != nil {
			respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
			return
		}
		ctx := authz.ContextWithEvaluation(r.Context(), eval)

		scopeID := ""
		if !systemScoped {
			// System routes have no scope concept; extraction on them
			// would be a programming error, so it never runs there.
			body := parseBody(r)
			if body != nil {
				ctx = context.WithValue(ctx, bodyContextKey{}, body)
			}
			scopeID, _, _ = authz.ExtractScope(authz.ScopeRequest{
				Method:     r.Method,
				PathParams: pathParams(r, wildcards),
				Query:      r.URL.Query(),
				Header:     r.Header,
				Body:       body,
			})
			if scopeID != "" {
				ctx = authz.ContextWithScope(ctx, scopeID)
			}
		}

		r = r.WithContext(ctx)
		dec := eval.AuthorizeAdmin(ctx, rt.class, scopeID)
		obs.ObserveDecision(string(rt.class), dec.Reason.String())
		audit.LogDecision(ctx, rt.class, scopeID, dec)
		if !dec.Allowed {
			respondDeny(w, r, dec)
			return
		}
		rt.handler(w, r)
	})
}

// requireMembership enforces the data-route precondition: plain
// organization membership in the request's scope, checked once per
// request. This is not an admin check and it is distinct from the
// ownership check that follows; it exists so accounts outside the
// organization cannot probe resource ids at all.
func (a *API) requireMembership(w http.ResponseWriter, r *http.Request) (*authz.Evaluation, bool) {
	eval, ok := authz.EvaluationFromContext(r.Context())
	if !ok {
		respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
		return nil, false
	}
	scopeID, ok := authz.ScopeFromContext(r.Context())
	if !ok {
		respondDeny(w, r, authz.Deny(authz.ReasonScopeRequired))
		return nil, false
	}
	role, err := eval.RoleAt(r.Context(), authz.OrgScope(scopeID))
	if err != nil {
		respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
		return nil, false
	}
	if !role.AtLeast(authz.RoleMember) {
		respondDeny(w, r, authz.Deny(authz.ReasonForbidden))
		return nil, false
	}
	return eval, true
}

// --- admin handlers ---

// SystemAccess reports the caller's system role. The guard has already
// admitted only sys_admin/sys_owner here; the evaluation's memoized state
// answers without another store round-trip.
func (a *API) SystemAccess(w http.ResponseWriter, r *http.Request) {
	eval, ok := authz.EvaluationFromContext(r.Context())
	if !ok {
		respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
		return
	}
	sys, err := eval.SystemRole(r.Context())
	if err != nil {
		respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":  eval.AccountID(),
		"system_role": sys.String(),
	})
}

// OrgAccess reports the caller's effective standing at the organization.
func (a *API) OrgAccess(w http.ResponseWriter, r *http.Request) {
	a.scopeAccess(w, r, authz.ScopeOrganization)
}

// WorkspaceAccess reports the caller's effective standing at the workspace.
func (a *API) WorkspaceAccess(w http.ResponseWriter, r *http.Request) {
	a.scopeAccess(w, r, authz.ScopeWorkspace)
}

func (a *API) scopeAccess(w http.ResponseWriter, r *http.Request, kind authz.ScopeKind) {
	eval, ok := authz.EvaluationFromContext(r.Context())
	if !ok {
		respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
		return
	}
	scopeID, ok := authz.ScopeFromContext(r.Context())
	if !ok {
		respondDeny(w, r, authz.Deny(authz.ReasonScopeRequired))
		return
	}
	role, err := eval.RoleAt(r.Context(), authz.Scope{ID: scopeID, Kind: kind})
	if err != nil {
		respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
		return
	}
	sys, err := eval.SystemRole(r.Context())
	if err != nil {
		respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":  eval.AccountID(),
		"scope_id":    scopeID,
		"scope_kind":  string(kind),
		"role":        role.String(),
		"system_role": sys.String(),
	})
}

// --- data handlers ---

// ResourceGet returns a resource the caller can view. A caller without
// view capability receives the same response as for a missing resource.
func (a *API) ResourceGet(w http.ResponseWriter, r *http.Request) {
	eval, ok := a.requireMembership(w, r)
	if !ok {
		return
	}
	resourceID := strings.TrimSpace(r.PathValue("resource_id"))
	if resourceID == "" {
		respondDeny(w, r, authz.Deny(authz.ReasonNotFound))
		return
	}
	res, dec := eval.ResourceDecision(r.Context(), resourceID, authz.CapabilityView)
	if !dec.Allowed {
		audit.LogDecision(r.Context(), authz.RouteData, resourceID, dec)
		respondDeny(w, r, dec)
		return
	}
	capability := authz.CapabilityView
	if authz.CanEdit(eval.AccountID(), res) {
		capability = authz.CapabilityEdit
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         res.ID,
		"owner_id":   res.OwnerID,
		"capability": string(capability),
	})
}

// ResourceDecisionCheck evaluates one capability on one resource for the
// caller. The scope id typically arrives in the request body here.
func (a *API) ResourceDecisionCheck(w http.ResponseWriter, r *http.Request) {
	eval, ok := a.requireMembership(w, r)
	if !ok {
		return
	}
	body, _ := r.Context().Value(bodyContextKey{}).(map[string]any)
	resourceID, _ := body["resource_id"].(string)
	rawCap, _ := body["capability"].(string)

	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		respondError(w, r, http.StatusBadRequest, "resource_id is required")
		return
	}
	capability, err := authz.ParseCapability(rawCap)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "capability must be view or edit")
		return
	}

	_, dec := eval.ResourceDecision(r.Context(), resourceID, capability)
	audit.LogDecision(r.Context(), authz.RouteData, resourceID, dec)
	if !dec.Allowed {
		respondDeny(w, r, dec)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"allowed":     true,
		"resource_id": resourceID,
		"capability":  string(capability),
	})
}

// --- request plumbing ---

// parseBody decodes a JSON object body for mutating verbs. Non-JSON or
// empty bodies yield nil; the raw body is not needed again downstream.
func parseBody(r *http.Request) map[string]any {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil
	}
	if r.Body == nil {
		return nil
	}
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		return nil
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil
	}
	return body
}

func pathParams(r *http.Request, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	params := make(map[string]string, len(names))
	for _, name := range names {
		if v := r.PathValue(name); v != "" {
			params[name] = v
		}
	}
	return params
}

// wildcardNames lists the {name} segments of a mux pattern.
func wildcardNames(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
			name = strings.TrimSuffix(name, "...")
			if name != "" && name != "$" {
				names = append(names, name)
			}
		}
	}
	return names
}
