package authz

import "context"

type principalContextKey struct{}
type evaluationContextKey struct{}
type scopeContextKey struct{}

// Principal is the resolved caller of the current request.
type Principal struct {
	AccountID string
	Identity  ExternalIdentity
}

// ContextWithPrincipal attaches the resolved principal to the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// PrincipalFromContext extracts the resolved principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil || v.AccountID == "" {
		return Principal{}, false
	}
	return *v, true
}

// ContextWithEvaluation stores the request's evaluation so later checks in
// the same handler chain reuse its memoized role state.
func ContextWithEvaluation(ctx context.Context, e *Evaluation) context.Context {
	if e == nil {
		return ctx
	}
	return context.WithValue(ctx, evaluationContextKey{}, e)
}

// EvaluationFromContext returns the request's evaluation if one is attached.
func EvaluationFromContext(ctx context.Context) (*Evaluation, bool) {
	if ctx == nil {
		return nil, false
	}
	v, ok := ctx.Value(evaluationContextKey{}).(*Evaluation)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ContextWithScope records the scope id extracted for this request.
func ContextWithScope(ctx context.Context, scopeID string) context.Context {
	if scopeID == "" {
		return ctx
	}
	return context.WithValue(ctx, scopeContextKey{}, scopeID)
}

// ScopeFromContext returns the extracted scope id if one was recorded.
func ScopeFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(scopeContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
