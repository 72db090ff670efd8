package httpapi

import (
	"encoding/json"
	"net/http"

	"tenantgate.org/internal/audit"
	"tenantgate.org/internal/authz"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":      msg,
		"request_id": audit.RequestIDFromContext(r.Context()),
	})
}

// statusFor maps the decision taxonomy onto wire status codes.
func statusFor(reason authz.Reason) int {
	switch reason {
	case authz.ReasonUnauthenticated:
		return http.StatusUnauthorized
	case authz.ReasonScopeRequired:
		return http.StatusBadRequest
	case authz.ReasonForbidden:
		return http.StatusForbidden
	case authz.ReasonNotFound:
		return http.StatusNotFound
	case authz.ReasonUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusForbidden
}

// messageFor keeps denial bodies uniform per reason. NotFound always reads
// as plain absence, so a denied prober and a truly missing record render
// the same.
func messageFor(reason authz.Reason) string {
	switch reason {
	case authz.ReasonUnauthenticated:
		return "unauthenticated"
	case authz.ReasonScopeRequired:
		return "scope id is required"
	case authz.ReasonForbidden:
		return "forbidden"
	case authz.ReasonNotFound:
		return "not found"
	case authz.ReasonUnavailable:
		return "service unavailable"
	}
	return "forbidden"
}

// respondDeny renders a negative decision and is the only place denials
// are written, so every component's outcome goes through one taxonomy.
func respondDeny(w http.ResponseWriter, r *http.Request, dec authz.Decision) {
	respondError(w, r, statusFor(dec.Reason), messageFor(dec.Reason))
}
