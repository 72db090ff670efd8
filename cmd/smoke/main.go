// Command smoke drives a running tenantgate-api over HTTP against the
// seeded demo tenancy and fails loudly on any unexpected outcome.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"tenantgate.org/internal/idp"
)

func main() {
	base := os.Getenv("TENANTGATE_SMOKE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	secret := os.Getenv("TENANTGATE_AUTH_SECRET")
	if secret == "" {
		log.Fatal("TENANTGATE_AUTH_SECRET is required")
	}
	provider := os.Getenv("TENANTGATE_IDP_PROVIDER")
	if provider == "" {
		provider = "okta"
	}

	verifier, err := idp.New(provider, secret)
	if err != nil {
		log.Fatalf("configure verifier: %v", err)
	}
	mint := func(subject string) string {
		token, err := verifier.Mint(subject, 5*time.Minute)
		if err != nil {
			log.Fatalf("mint token for %s: %v", subject, err)
		}
		return token
	}

	client := &http.Client{Timeout: 10 * time.Second}
	call := func(method, path, token string, body map[string]any) (int, map[string]any) {
		var payload *bytes.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			if err != nil {
				log.Fatalf("marshal body: %v", err)
			}
			payload = bytes.NewReader(raw)
		} else {
			payload = bytes.NewReader(nil)
		}
		req, err := http.NewRequest(method, base+path, payload)
		if err != nil {
			log.Fatalf("build %s %s: %v", method, path, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		var decoded map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		return resp.StatusCode, decoded
	}
	expect := func(what string, got, want int) {
		if got != want {
			log.Fatalf("%s: expected %d, got %d", what, want, got)
		}
	}

	admin := mint("u1")
	viewer := mint("u2")
	member := mint("u4")

	status, _ := call(http.MethodGet, "/healthz", "", nil)
	expect("healthz", status, http.StatusOK)

	status, payload := call(http.MethodGet, "/v1/orgs/o1/access", admin, nil)
	expect("admin org access", status, http.StatusOK)
	if payload["role"] != "admin" {
		log.Fatalf("admin org access: expected role admin, got %v", payload["role"])
	}

	status, _ = call(http.MethodGet, "/v1/orgs/o1/access", viewer, nil)
	expect("member denied admin route", status, http.StatusForbidden)

	status, _ = call(http.MethodGet, "/v1/orgs/o1/access", "", nil)
	expect("anonymous denied", status, http.StatusUnauthorized)

	status, payload = call(http.MethodGet, "/v1/resources/r1?scope_id=o1", viewer, nil)
	expect("viewer reads shared resource", status, http.StatusOK)
	if payload["capability"] != "view" {
		log.Fatalf("viewer capability: expected view, got %v", payload["capability"])
	}

	status, _ = call(http.MethodGet, "/v1/resources/r1?scope_id=o1", member, nil)
	expect("ungranted member sees not found", status, http.StatusNotFound)

	status, _ = call(http.MethodPost, "/v1/decisions/resource", viewer, map[string]any{
		"scope_id":    "o1",
		"resource_id": "r1",
		"capability":  "edit",
	})
	expect("viewer denied edit", status, http.StatusForbidden)

	status, payload = call(http.MethodPost, "/v1/decisions/resource", admin, map[string]any{
		"scope_id":    "o1",
		"resource_id": "r1",
		"capability":  "edit",
	})
	expect("owner allowed edit", status, http.StatusOK)
	if payload["allowed"] != true {
		log.Fatalf("owner edit decision: expected allowed, got %v", payload)
	}

	fmt.Println("smoke test passed")
}
