package authz

import (
	"context"
	"fmt"
	"testing"
)

func sharedResource() Resource {
	return Resource{
		ID:      "r1",
		OwnerID: "a1",
		Grants: []SharedGrant{
			{AccountID: "a2", Capability: CapabilityView},
			{AccountID: "a4", Capability: CapabilityEdit},
		},
	}
}

func TestOwnershipAndSharing(t *testing.T) {
	r1 := sharedResource()

	tests := []struct {
		account  string
		canView  bool
		canEdit  bool
	}{
		{"a1", true, true},  // owner
		{"a2", true, false}, // view grant
		{"a3", false, false},
		{"a4", true, true}, // edit grant implies view
		{"", false, false},
	}
	for _, tc := range tests {
		if got := CanView(tc.account, r1); got != tc.canView {
			t.Fatalf("CanView(%q) = %v, want %v", tc.account, got, tc.canView)
		}
		if got := CanEdit(tc.account, r1); got != tc.canEdit {
			t.Fatalf("CanEdit(%q) = %v, want %v", tc.account, got, tc.canEdit)
		}
	}
}

func TestAdminRoleGrantsNoResourceAccess(t *testing.T) {
	// The signatures take no role at all, so this test pins the intent:
	// an organization admin with no grant sees nothing.
	res := Resource{ID: "r9", OwnerID: "someone-else"}
	if CanView("org-admin-account", res) {
		t.Fatal("scope admin must not view unshared resources")
	}
	if CanEdit("org-admin-account", res) {
		t.Fatal("scope admin must not edit unshared resources")
	}
}

func TestResourceAccessRendering(t *testing.T) {
	r1 := sharedResource()

	tests := []struct {
		name    string
		account string
		cap     Capability
		want    Decision
	}{
		{"owner view", "a1", CapabilityView, Allow},
		{"owner edit", "a1", CapabilityEdit, Allow},
		{"view grant can view", "a2", CapabilityView, Allow},
		// Existence already known to a viewer, so an edit denial is a
		// plain forbidden.
		{"view grant cannot edit", "a2", CapabilityEdit, Deny(ReasonForbidden)},
		// A stranger probing must see absence, for either capability.
		{"stranger view", "a3", CapabilityView, Deny(ReasonNotFound)},
		{"stranger edit", "a3", CapabilityEdit, Deny(ReasonNotFound)},
		{"edit grant edits", "a4", CapabilityEdit, Allow},
		{"unknown capability", "a1", Capability("delete"), Deny(ReasonForbidden)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResourceAccess(tc.account, r1, tc.cap); got != tc.want {
				t.Fatalf("ResourceAccess = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResourceDecisionLoadsAndEvaluates(t *testing.T) {
	store := &stubStore{
		resourceFn: func(_ context.Context, resourceID string) (Resource, error) {
			if resourceID != "r1" {
				return Resource{}, ErrNotFound
			}
			return sharedResource(), nil
		},
	}

	eval, _ := NewEvaluation(store, "a2")
	res, dec := eval.ResourceDecision(context.Background(), "r1", CapabilityView)
	if !dec.Allowed {
		t.Fatalf("expected allow, got %s", dec)
	}
	if res.OwnerID != "a1" {
		t.Fatalf("unexpected owner %q", res.OwnerID)
	}

	_, dec = eval.ResourceDecision(context.Background(), "r-missing", CapabilityView)
	if dec.Allowed || dec.Reason != ReasonNotFound {
		t.Fatalf("expected not found, got %s", dec)
	}
}

func TestResourceDecisionStoreOutage(t *testing.T) {
	store := &stubStore{
		resourceFn: func(_ context.Context, _ string) (Resource, error) {
			return Resource{}, fmt.Errorf("%w: read timeout", ErrUnavailable)
		},
	}
	eval, _ := NewEvaluation(store, "a1")

	_, dec := eval.ResourceDecision(context.Background(), "r1", CapabilityEdit)
	if dec.Allowed || dec.Reason != ReasonUnavailable {
		t.Fatalf("expected unavailable, got %s", dec)
	}
}

func TestResourceChecksAreIdempotent(t *testing.T) {
	r1 := sharedResource()
	for i := 0; i < 2; i++ {
		if !CanView("a2", r1) {
			t.Fatal("view decision changed between identical calls")
		}
		if CanEdit("a2", r1) {
			t.Fatal("edit decision changed between identical calls")
		}
	}
}
