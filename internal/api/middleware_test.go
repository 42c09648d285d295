package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"valid token", "Bearer secret-token", "secret-token"},
		{"lowercase scheme", "bearer secret-token", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"padded token", "Bearer   secret-token  ", "secret-token"},
		{"scheme only", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(r); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstantTimeEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"secret", "secret", true},
		{"secret", "Secret", false},
		{"secret", "secret2", false},
		{"", "", true},
		{"", "x", false},
	}

	for _, tt := range tests {
		if got := constantTimeEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("constantTimeEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	var sawPrivileged bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawPrivileged = PrivilegedFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware("user-key", "admin-key")(next)

	tests := []struct {
		name           string
		token          string
		wantStatus     int
		wantPrivileged bool
	}{
		{"regular key", "user-key", http.StatusOK, false},
		{"admin key", "admin-key", http.StatusOK, true},
		{"wrong key", "nope", http.StatusUnauthorized, false},
		{"no token", "", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sawPrivileged = false
			r := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Code == http.StatusOK && sawPrivileged != tt.wantPrivileged {
				t.Errorf("privileged = %v, want %v", sawPrivileged, tt.wantPrivileged)
			}
			if w.Code == http.StatusUnauthorized {
				if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
					t.Errorf("content type = %q", ct)
				}
			}
		})
	}
}

func TestAuthMiddleware_EmptyAdminKeyNeverPrivileges(t *testing.T) {
	var sawPrivileged bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawPrivileged = PrivilegedFromContext(r.Context())
	})
	handler := AuthMiddleware("", "")(next)

	// With both keys unset a bare request passes, but never as privileged.
	r := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if sawPrivileged {
		t.Error("request without keys must not be privileged")
	}
}
