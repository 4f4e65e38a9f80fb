package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func csrfRequest(method, token string, withCookie bool, cookieValue string) *http.Request {
	r := httptest.NewRequest(method, "/api/timer/start", nil)
	if token != "" {
		r.Header.Set(CSRFHeaderName, token)
	}
	if withCookie {
		r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookieValue})
	}
	return r
}

func TestNewCSRFToken_Unique(t *testing.T) {
	a, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("NewCSRFToken() error = %v", err)
	}
	b, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("NewCSRFToken() error = %v", err)
	}
	if a == "" || a == b {
		t.Errorf("tokens should be non-empty and unique, got %q and %q", a, b)
	}
}

func TestCSRFGuard(t *testing.T) {
	called := false
	guard := CSRFGuard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "GET is exempt",
			req:        csrfRequest(http.MethodGet, "", false, ""),
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "POST without cookie or header",
			req:        csrfRequest(http.MethodPost, "", false, ""),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with cookie but no header",
			req:        csrfRequest(http.MethodPost, "", true, "tok-abc"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with mismatched pair",
			req:        csrfRequest(http.MethodPost, "tok-other", true, "tok-abc"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with matching pair",
			req:        csrfRequest(http.MethodPost, "tok-abc", true, "tok-abc"),
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "DELETE with matching pair",
			req:        csrfRequest(http.MethodDelete, "tok-abc", true, "tok-abc"),
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			rr := httptest.NewRecorder()
			guard.ServeHTTP(rr, tt.req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
		})
	}
}
