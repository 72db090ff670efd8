package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"tenantgate.org/internal/authz"
	"tenantgate.org/internal/idp"
	"tenantgate.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
}

// withAuth verifies the bearer credential and resolves the external
// identity to an internal account before anything else runs. Requests on
// public paths pass through untouched.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			obs.ObserveIdentityResolution("invalid")
			respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
			return
		}

		identity, err := a.verifier.Verify(token)
		if err != nil {
			obs.ObserveIdentityResolution("invalid")
			respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
			return
		}

		accountID, err := a.resolver.Resolve(r.Context(), identity)
		if err != nil {
			switch {
			case errors.Is(err, authz.ErrNoAccount):
				// Reportable on its own: the credential verified but
				// no account exists yet. Never coerced into a
				// permission denial.
				obs.ObserveIdentityResolution("no_account")
				respondDeny(w, r, authz.Deny(authz.ReasonUnauthenticated))
			case errors.Is(err, authz.ErrUnavailable):
				obs.ObserveIdentityResolution("unavailable")
				respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
			default:
				obs.ObserveIdentityResolution("unavailable")
				respondDeny(w, r, authz.Deny(authz.ReasonUnavailable))
			}
			return
		}

		obs.ObserveIdentityResolution("resolved")
		ctx := authz.ContextWithPrincipal(r.Context(), authz.Principal{
			AccountID: accountID,
			Identity:  identity,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", idp.ErrInvalidCredential
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", idp.ErrInvalidCredential
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", idp.ErrInvalidCredential
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
