package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/worktracker/internal/auth"
	"github.com/sakif/worktracker/internal/service"
)

// AuthHandler exposes the authentication endpoints:
//
//	GET  /api/auth/csrf     → mint the CSRF token (cookie + body)
//	POST /api/auth/register → create account, set session cookie
//	POST /api/auth/login    → verify credentials, set session cookie
//	GET  /api/auth/me       → current session's user
//	POST /api/auth/logout   → clear session + CSRF cookies
//
// Cookies are an HTTP concern, so they are set here, not in the service.
type AuthHandler struct {
	service      *service.AuthService
	sessionTTL   time.Duration
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie should be true in
// production (cookies then require HTTPS).
func NewAuthHandler(svc *service.AuthService, sessionTTL time.Duration, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      svc,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// credentialsRequest is the body of both register and login; register
// additionally requires name.
type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleCSRF mints a fresh CSRF token, sets it as the script-readable
// cookie, and returns it in the body. The client calls this once on load
// and echoes the token in X-CSRF-Token on every mutation.
//
// HTTP: GET /api/auth/csrf
func (h *AuthHandler) HandleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := auth.NewCSRFToken()
	if err != nil {
		h.logger.Error("CSRF token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	auth.SetCSRFCookie(w, token, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register {name,email,password}
// 201 {message,user} | 400 invalid input | 409 email taken
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	result, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.sessionTTL, h.secureCookie)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registration complete",
		"user":    result.User.Public(),
	})
}

// HandleLogin verifies credentials and opens a session.
//
// HTTP: POST /api/auth/login {email,password}
// 200 {message,user} | 400 missing input | 401 bad credentials
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.sessionTTL, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    result.User.Public(),
	})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/auth/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid session required"})
		return
	}

	user, err := h.service.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		// The account behind the token is gone — drop the cookie too.
		auth.ClearSessionCookie(w, h.secureCookie)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user.Public()})
}

// HandleLogout ends the session by clearing both cookies. The token stays
// technically valid until expiry (it is stateless), but without the cookie
// the browser can no longer present it.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)
	auth.ClearCSRFCookie(w, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logout complete"})
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "invalid JSON body",
	})
}
