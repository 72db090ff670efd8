package authz

import (
	"net/http"
	"net/url"
	"strings"
)

// Scope id carriers recognized by the extractor. The credential itself is
// never a source: the token proves who the principal is, not which of their
// scopes they are acting in for this request.
const (
	ScopeParam  = "scope_id"
	ScopeHeader = "X-Scope-Id"
)

// ScopeRequest is the transport-neutral slice of a request the extractor
// reads. Body holds the parsed JSON object for mutating verbs only; the
// caller leaves it nil otherwise.
type ScopeRequest struct {
	Method     string
	PathParams map[string]string
	Query      url.Values
	Header     http.Header
	Body       map[string]any
}

// scopeSource is one typed extractor in the precedence chain.
type scopeSource struct {
	name string
	get  func(ScopeRequest) string
}

// Precedence, first match wins: path, query, body (mutating verbs only),
// header. Kept as an explicit ordered list so the order stays auditable
// and each source is testable in isolation.
var scopeSources = []scopeSource{
	{name: "path", get: func(r ScopeRequest) string {
		return r.PathParams[ScopeParam]
	}},
	{name: "query", get: func(r ScopeRequest) string {
		if r.Query == nil {
			return ""
		}
		return r.Query.Get(ScopeParam)
	}},
	{name: "body", get: func(r ScopeRequest) string {
		if !mutatingVerb(r.Method) || r.Body == nil {
			return ""
		}
		v, _ := r.Body[ScopeParam].(string)
		return v
	}},
	{name: "header", get: func(r ScopeRequest) string {
		if r.Header == nil {
			return ""
		}
		return r.Header.Get(ScopeHeader)
	}},
}

// ExtractScope derives the scope id of a request, returning the id, the
// source that produced it, and whether any source matched. It never guesses
// a default; an empty result on a scope-dependent route is the caller's
// ScopeRequired condition. System-class routes have no scope concept and
// must not call this.
func ExtractScope(req ScopeRequest) (scopeID, source string, ok bool) {
	for _, src := range scopeSources {
		if v := strings.TrimSpace(src.get(req)); v != "" {
			return v, src.name, true
		}
	}
	return "", "", false
}

func mutatingVerb(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
