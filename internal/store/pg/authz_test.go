package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"tenantgate.org/internal/authz"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestLookupAccount(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select account_id.*from external_identities").
		WithArgs("okta", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("a1"))

	accountID, err := store.LookupAccount(context.Background(), "okta", "u1")
	if err != nil {
		t.Fatalf("LookupAccount: %v", err)
	}
	if accountID != "a1" {
		t.Fatalf("unexpected account id %q", accountID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLookupAccountMissingMapping(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select account_id.*from external_identities").
		WithArgs("okta", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}))

	_, err := store.LookupAccount(context.Background(), "okta", "u1")
	if !errors.Is(err, authz.ErrNoAccount) {
		t.Fatalf("expected ErrNoAccount, got %v", err)
	}
}

func TestSystemRole(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select system_role from accounts").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"system_role"}).AddRow("sys_admin"))

	role, err := store.SystemRole(context.Background(), "a1")
	if err != nil {
		t.Fatalf("SystemRole: %v", err)
	}
	if role != authz.SystemAdmin {
		t.Fatalf("expected sys_admin, got %s", role)
	}
}

func TestSystemRoleUnknownAccount(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select system_role from accounts").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"system_role"}))

	if _, err := store.SystemRole(context.Background(), "ghost"); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSystemRoleOutageMapsToUnavailable(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select system_role from accounts").
		WithArgs("a1").
		WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	_, err := store.SystemRole(context.Background(), "a1")
	if !errors.Is(err, authz.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if errors.Is(err, authz.ErrNotFound) {
		t.Fatal("outage must not read as absence")
	}
}

func TestScopeMembershipAbsenceIsNone(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select role.*from scope_memberships").
		WithArgs("a1", "o2").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := store.ScopeMembership(context.Background(), "a1", "o2")
	if err != nil {
		t.Fatalf("ScopeMembership: %v", err)
	}
	if role != authz.RoleNone {
		t.Fatalf("expected none, got %s", role)
	}
}

func TestScopeMembershipRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select role.*from scope_memberships").
		WithArgs("a1", "o1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	role, err := store.ScopeMembership(context.Background(), "a1", "o1")
	if err != nil {
		t.Fatalf("ScopeMembership: %v", err)
	}
	if role != authz.RoleAdmin {
		t.Fatalf("expected admin, got %s", role)
	}
}

func TestWorkspaceOrg(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select organization_id from workspaces").
		WithArgs("ws1").
		WillReturnRows(sqlmock.NewRows([]string{"organization_id"}).AddRow("o1"))

	orgID, err := store.WorkspaceOrg(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("WorkspaceOrg: %v", err)
	}
	if orgID != "o1" {
		t.Fatalf("expected o1, got %q", orgID)
	}

	mock.ExpectQuery("select organization_id from workspaces").
		WithArgs("ws-missing").
		WillReturnRows(sqlmock.NewRows([]string{"organization_id"}))
	if _, err := store.WorkspaceOrg(context.Background(), "ws-missing"); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResourceWithGrants(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select owner_id from resources").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("a1"))
	mock.ExpectQuery("select account_id, capability.*from resource_grants").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "capability"}).
			AddRow("a2", "view").
			AddRow("a4", "edit"))

	res, err := store.Resource(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Resource: %v", err)
	}
	if res.OwnerID != "a1" {
		t.Fatalf("unexpected owner %q", res.OwnerID)
	}
	if len(res.Grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(res.Grants))
	}
	if res.Grants[0].Capability != authz.CapabilityView || res.Grants[1].Capability != authz.CapabilityEdit {
		t.Fatalf("grants not preserved: %+v", res.Grants)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResourceAbsent(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select owner_id from resources").
		WithArgs("r-missing").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}))

	if _, err := store.Resource(context.Background(), "r-missing"); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResourceGrantQueryOutage(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select owner_id from resources").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("a1"))
	mock.ExpectQuery("select account_id, capability.*from resource_grants").
		WithArgs("r1").
		WillReturnError(errors.New("read timeout"))

	if _, err := store.Resource(context.Background(), "r1"); !errors.Is(err, authz.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
