package idp

import (
	"errors"
	"testing"
	"time"
)

func TestMintAndVerify(t *testing.T) {
	v, err := New("okta", "test-secret")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	token, err := v.Mint("u1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	id, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Provider != "okta" || id.Subject != "u1" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := New("okta", "secret-a")
	verifier, _ := New("okta", "secret-b")

	token, err := issuer.Mint("u1", time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	issuer, _ := New("github", "shared")
	verifier, _ := New("okta", "shared")

	token, err := issuer.Mint("u1", time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	base := time.Now().UTC()
	clock := base
	v, _ := New("okta", "secret", WithClock(func() time.Time { return clock }))

	token, err := v.Mint("u1", time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	clock = base.Add(2 * time.Minute)
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected expiry rejection, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v, _ := New("okta", "secret")
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := v.Verify(token); !errors.Is(err, ErrInvalidCredential) {
			t.Fatalf("expected ErrInvalidCredential for %q, got %v", token, err)
		}
	}
}

func TestNewValidatesInput(t *testing.T) {
	if _, err := New("", "secret"); err == nil {
		t.Fatal("expected error for empty provider")
	}
	if _, err := New("okta", "  "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestMintValidatesInput(t *testing.T) {
	v, _ := New("okta", "secret")
	if _, err := v.Mint("", time.Minute); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if _, err := v.Mint("u1", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
