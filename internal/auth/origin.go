package auth

import (
	"fmt"
	"net/http"
	"regexp"
)

// OriginPolicy is the production-only Origin allow-list for state-mutating
// requests. Browsers attach the Origin header to cross-origin (and most
// same-origin) non-safe requests and script cannot forge it, so requiring
// a known value is a cheap second line of defense next to the CSRF guard.
type OriginPolicy struct {
	enforce bool
	exact   string         // allowed origin, exact string match
	pattern *regexp.Regexp // optional allowed-origin pattern
}

// NewOriginPolicy builds the policy. enforce=false (development) produces
// a pass-through policy. In production at least one of exactOrigin or
// originPattern must be set, and the pattern must compile — both checked
// here, at startup, so a bad config fails boot instead of 500ing every
// mutation at runtime.
func NewOriginPolicy(enforce bool, exactOrigin, originPattern string) (*OriginPolicy, error) {
	p := &OriginPolicy{enforce: enforce, exact: exactOrigin}

	if originPattern != "" {
		re, err := regexp.Compile(originPattern)
		if err != nil {
			return nil, fmt.Errorf("auth: invalid origin pattern %q: %w", originPattern, err)
		}
		p.pattern = re
	}

	if enforce && p.exact == "" && p.pattern == nil {
		return nil, fmt.Errorf("auth: production requires an allowed origin or origin pattern")
	}

	return p, nil
}

// Allows reports whether the given Origin header value is acceptable.
func (p *OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.exact != "" && origin == p.exact {
		return true
	}
	return p.pattern != nil && p.pattern.MatchString(origin)
}

// Guard is the middleware form of the policy. Safe methods and all
// requests outside production pass through; everything else must carry an
// allowed Origin or gets 403.
func (p *OriginPolicy) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.enforce {
			next.ServeHTTP(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if !p.Allows(r.Header.Get("Origin")) {
			forbidden(w, "origin not allowed")
			return
		}

		next.ServeHTTP(w, r)
	})
}
