package auth

import (
	"context"
	"net/http"
	"time"
)

// SessionCookieName is the HttpOnly cookie carrying the session JWT.
const SessionCookieName = "worktracker_session"

// contextKey is an unexported type for context keys in this package.
// A package-private key type means no other package can read or shadow
// the session value we store in the request context.
type contextKey string

const sessionKey contextKey = "session"

// RequireAuth enforces authentication on protected routes.
//
// It reads the session JWT from the session cookie (or, for non-browser
// clients, from an "Authorization: Bearer" header), validates it, and
// stores the Session in the request context. Missing or invalid credential
// stops the chain with 401; the client must re-authenticate — tokens are
// never refreshed silently.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			session, err := tokens.Validate(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext retrieves the authenticated session from the request
// context. Returns (nil, false) on routes not behind RequireAuth.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// tokenFromRequest extracts the raw JWT: session cookie first (browsers),
// then the Authorization header (scripted clients).
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid session required"}`))
}

// SetSessionCookie installs the session JWT as an HttpOnly cookie.
//
// HttpOnly keeps the token away from client script (XSS containment);
// SameSite=Lax keeps it off cross-site POSTs; Secure is enabled in
// production where HTTPS is guaranteed. The cookie lifetime matches the
// token lifetime so the browser drops both together.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to delete the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
