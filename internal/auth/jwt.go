package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token issuer/audience. Pinning both means a token minted by any other
// app sharing the secret (or by an older deployment) is rejected.
const (
	tokenIssuer   = "worktracker"
	tokenAudience = "worktracker-client"
)

// DefaultSessionTTL is how long a session credential stays valid. After
// expiry the client must log in again — there is no silent refresh.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session identifies an authenticated user for the lifetime of a token.
// It is what Validate returns and what handlers read from the context.
type Session struct {
	UserID string
	Email  string
	Name   string
}

// TokenService mints and verifies the signed session credential.
//
// The credential is an HS256 JWT: stateless, so no session table — the
// signature plus expiry claim carry everything. The same secret signs and
// verifies; it must be long random data (JWT_SECRET, >= 32 chars).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and session
// lifetime. A zero ttl selects DefaultSessionTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth: JWT secret must be at least 32 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// sessionClaims is the JWT payload: the registered claims (sub = user ID,
// exp, iss, aud) plus the user's email and name so the client can render
// the session without an extra round trip.
type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given user identity.
func (s *TokenService) Generate(userID, email, name string) (string, error) {
	now := time.Now()

	c := sessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// GenerateWithTTL creates a token with a custom lifetime. Used by tests to
// mint already-expired tokens.
func (s *TokenService) GenerateWithTTL(userID, email, name string, ttl time.Duration) (string, error) {
	clone := &TokenService{secret: s.secret, ttl: ttl}
	return clone.Generate(userID, email, name)
}

// ErrInvalidToken is returned by Validate for any unusable token —
// expired, tampered, wrong issuer/audience, or malformed. Callers treat
// all of these the same way: the session is gone, re-authenticate.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Validate parses and verifies a session token, returning the session it
// encodes.
//
// Verification is delegated to the jwt library: signature, expiry,
// issuer, audience, and — via WithValidMethods — the signing algorithm.
// Without the method check an attacker could try an algorithm-confusion
// token; with it, anything but HS256 is rejected outright.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Session{
		UserID: c.Subject,
		Email:  c.Email,
		Name:   c.Name,
	}, nil
}
