package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"tenantgate.org/internal/authz"
	"tenantgate.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and principal context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if principal, ok := authz.PrincipalFromContext(ctx); ok {
		entry["account_id"] = principal.AccountID
		entry["identity"] = principal.Identity.String()
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}

// LogDecision records one authorization decision against a target (a
// scope id for admin classes, a resource id for data checks). Denials
// always land in the audit trail; allows are recorded for admin route
// classes where the trail doubles as an access log for privileged
// surfaces.
func LogDecision(ctx context.Context, routeClass authz.RouteClass, target string, dec authz.Decision) {
	if dec.Allowed && routeClass == authz.RouteData {
		return
	}
	fields := map[string]any{
		"route_class": string(routeClass),
		"decision":    dec.String(),
	}
	if target != "" {
		fields["target"] = target
	}
	_ = LogEvent(ctx, "authz_decision", fields)
}
