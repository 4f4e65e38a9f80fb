package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// CSRF double-submit defense.
//
// The session cookie is sent automatically by the browser, so a hostile
// page can make the browser fire authenticated requests. The counter: the
// server hands the client a second, unguessable token in a cookie that
// client script CAN read (HttpOnly=false is the point here), and every
// state-mutating request must echo that token back in a request header.
// A cross-site attacker can trigger the request but cannot read the cookie
// to fill in the header, so the pair never matches.
const (
	// CSRFCookieName is the script-readable cookie holding the token.
	CSRFCookieName = "worktracker_csrf"
	// CSRFHeaderName is the header mutations must echo the token in.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32
	csrfCookieTTL  = 2 * time.Hour
)

// NewCSRFToken returns a fresh unguessable token: 32 bytes from
// crypto/rand, base64url-encoded.
func NewCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating CSRF token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SetCSRFCookie installs the CSRF token cookie. SameSite=Strict: the
// cookie only travels on same-site requests, which is exactly the set of
// requests the guard should ever accept.
func SetCSRFCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(csrfCookieTTL.Seconds()),
		HttpOnly: false, // client script must read it to echo it back
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCSRFCookie tells the browser to delete the CSRF cookie.
func ClearCSRFCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// CSRFGuard rejects state-mutating requests whose CSRF header does not
// match the CSRF cookie. Safe methods (GET/HEAD/OPTIONS) pass through —
// they must not mutate state, so they need no proof of intent.
//
// The comparison is constant-time: an equality check that bails on the
// first differing byte would let an attacker brute-force the token
// byte-by-byte from response timing.
func CSRFGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		headerToken := r.Header.Get(CSRFHeaderName)
		if err != nil || cookie.Value == "" || headerToken == "" {
			forbidden(w, "missing CSRF token")
			return
		}

		a := []byte(cookie.Value)
		b := []byte(headerToken)
		if len(a) != len(b) || subtle.ConstantTimeCompare(a, b) != 1 {
			forbidden(w, "invalid CSRF token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprintf(w, `{"error":"forbidden","message":%q}`, message)
}
