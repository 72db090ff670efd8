package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"tenantgate.org/internal/authz"
	"tenantgate.org/internal/obs"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	logger := obs.Logger()
	orig := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(orig) })
	return &buf
}

func TestLogEventIncludesRequestAndPrincipal(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = authz.ContextWithPrincipal(ctx, authz.Principal{
		AccountID: "a1",
		Identity:  authz.ExternalIdentity{Provider: "okta", Subject: "u1"},
	})

	if err := LogEvent(ctx, "authz_decision", map[string]any{"scope_id": "o1"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("audit line is not valid JSON: %v", err)
	}
	if entry["event"] != "authz_decision" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("missing request id: %v", entry)
	}
	if entry["account_id"] != "a1" {
		t.Fatalf("missing account id: %v", entry)
	}
	if entry["identity"] != "okta:u1" {
		t.Fatalf("missing identity: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["scope_id"] != "o1" {
		t.Fatalf("fields not forwarded: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestLogDecisionSkipsAllowedDataRoutes(t *testing.T) {
	buf := captureLog(t)

	LogDecision(context.Background(), authz.RouteData, "", authz.Allow)
	if buf.Len() != 0 {
		t.Fatalf("allowed data decisions must not be audited, got %q", buf.String())
	}

	LogDecision(context.Background(), authz.RouteData, "o1", authz.Deny(authz.ReasonForbidden))
	if buf.Len() == 0 {
		t.Fatal("denied decisions must be audited")
	}
}

func TestLogDecisionRecordsAdminAllows(t *testing.T) {
	buf := captureLog(t)

	LogDecision(context.Background(), authz.RouteOrganizationAdmin, "o1", authz.Allow)
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("audit line is not valid JSON: %v", err)
	}
	fields := entry["fields"].(map[string]any)
	if fields["decision"] != "allow" || fields["route_class"] != "organization_admin" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
