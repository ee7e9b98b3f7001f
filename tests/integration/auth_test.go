//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLogin_Success(t *testing.T) {
	token := login(t, "alice", "alice123")
	if token == "" {
		t.Fatal("expected non-empty token")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	resp := doPost(t, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	body := decodeJSON[loginResponse](t, resp)
	if body.Token != nil {
		t.Errorf("expected null token, got %q", *body.Token)
	}
	if body.Message != "Invalid credentials" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	resp := doPost(t, "/api/auth/login", "", map[string]string{
		"username": "mallory",
		"password": "whatever",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	resp := doPost(t, "/api/auth/login", "", map[string]string{
		"username": "alice",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Status != http.StatusBadRequest {
		t.Errorf("envelope status: got %d", body.Status)
	}
	if body.Path != "/api/auth/login" {
		t.Errorf("envelope path: got %q", body.Path)
	}
}

func TestProtectedEndpoint_NoToken(t *testing.T) {
	resp := doGet(t, "/api/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestProtectedEndpoint_MalformedToken(t *testing.T) {
	resp := doGet(t, "/api/products", "not.a.jwt")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestProtectedEndpoint_TamperedToken(t *testing.T) {
	token := login(t, "alice", "alice123")

	resp := doGet(t, "/api/products", token[:len(token)-2]+"xx")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
