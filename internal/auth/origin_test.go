package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOriginPolicy_ProductionNeedsAnOrigin(t *testing.T) {
	if _, err := NewOriginPolicy(true, "", ""); err == nil {
		t.Fatal("NewOriginPolicy(enforce, no origins) should fail")
	}
}

func TestNewOriginPolicy_BadPattern(t *testing.T) {
	if _, err := NewOriginPolicy(true, "", "https://(unclosed"); err == nil {
		t.Fatal("NewOriginPolicy() should reject a pattern that does not compile")
	}
}

func TestAllows(t *testing.T) {
	p, err := NewOriginPolicy(true, "https://tracker.example.com", `^https://.*\.example\.com$`)
	if err != nil {
		t.Fatalf("NewOriginPolicy: %v", err)
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://tracker.example.com", true},
		{"https://staging.example.com", true},
		{"https://evil.com", false},
		{"http://tracker.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.Allows(tt.origin); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestGuard(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	enforcing, err := NewOriginPolicy(true, "https://tracker.example.com", "")
	if err != nil {
		t.Fatalf("NewOriginPolicy: %v", err)
	}
	passthrough, err := NewOriginPolicy(false, "", "")
	if err != nil {
		t.Fatalf("NewOriginPolicy: %v", err)
	}

	tests := []struct {
		name       string
		policy     *OriginPolicy
		method     string
		origin     string
		wantStatus int
	}{
		{"development passes anything", passthrough, http.MethodPost, "https://evil.com", http.StatusNoContent},
		{"safe method exempt", enforcing, http.MethodGet, "", http.StatusNoContent},
		{"allowed origin", enforcing, http.MethodPost, "https://tracker.example.com", http.StatusNoContent},
		{"missing origin rejected", enforcing, http.MethodPost, "", http.StatusForbidden},
		{"foreign origin rejected", enforcing, http.MethodPost, "https://evil.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/api/timer/start", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			tt.policy.Guard(ok).ServeHTTP(rr, r)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
