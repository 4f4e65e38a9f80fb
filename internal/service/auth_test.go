package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/worktracker/internal/apperror"
	"github.com/sakif/worktracker/internal/auth"
	"github.com/sakif/worktracker/internal/model"
)

// =========================================================================
// FAKE USER REPOSITORY
// =========================================================================
//
// An in-memory stand-in for the sqlite implementation. The service only
// sees the repository.UserRepository interface, so it cannot tell the
// difference — which is the point: these tests exercise the business
// rules, not SQL.

type fakeUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Conflict("email is already registered")
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *user
	return &result, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

// =========================================================================
// TEST HELPER
// =========================================================================

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	tokens, err := auth.NewTokenService("test-secret-that-is-at-least-32-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewAuthService(repo, tokens, auth.NewPasswordServiceForTest(), logger)
	return svc, repo
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), "Mario", "Mario@Example.com", "Abcdef12")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.ID == "" {
		t.Error("expected registered user to have an ID")
	}
	if result.User.Email != "mario@example.com" {
		t.Errorf("Email = %q, want normalized %q", result.User.Email, "mario@example.com")
	}
	if result.User.PasswordHash == "Abcdef12" {
		t.Error("password stored in plaintext")
	}
	if result.Token == "" {
		t.Error("expected a session token")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name, userName, email, password string
	}{
		{"no name", "", "a@b.com", "Abcdef12"},
		{"no email", "Mario", "", "Abcdef12"},
		{"no password", "Mario", "a@b.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	for _, email := range []string{"plainaddress", "no@dot", "two@@example.com", "spa ce@example.com"} {
		if _, err := svc.Register(context.Background(), "Mario", email, "Abcdef12"); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Register(%q) error = %v, want ErrValidation", email, err)
		}
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "Mario", "mario@example.com", "abcdefgh")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for weak password", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "Mario", "mario@example.com", "Abcdef12"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	// Same email, different case — normalization makes it a duplicate.
	_, err := svc.Register(context.Background(), "Impostor", "MARIO@example.com", "Abcdef12")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), "Mario", "mario@example.com", "Abcdef12")
	if err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "  MARIO@example.com ", "Abcdef12")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Errorf("UserID = %q, want %q", result.User.ID, registered.User.ID)
	}
	if result.Token == "" {
		t.Error("expected a session token")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "ghost@example.com", "Abcdef12")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "Mario", "mario@example.com", "Abcdef12"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	_, err := svc.Login(context.Background(), "mario@example.com", "Wrongpw1")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLogin_FailuresAreUniform(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "Mario", "mario@example.com", "Abcdef12"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	_, errUnknown := svc.Login(context.Background(), "ghost@example.com", "Abcdef12")
	_, errWrongPw := svc.Login(context.Background(), "mario@example.com", "Wrongpw1")

	var appUnknown, appWrong *apperror.AppError
	if !errors.As(errUnknown, &appUnknown) || !errors.As(errWrongPw, &appWrong) {
		t.Fatalf("expected AppErrors, got %v and %v", errUnknown, errWrongPw)
	}
	if appUnknown.Message != appWrong.Message {
		t.Errorf("messages differ: %q vs %q — account existence leaks", appUnknown.Message, appWrong.Message)
	}
}

// =========================================================================
// GET USER TESTS
// =========================================================================

func TestGetUserByID_VanishedUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.GetUserByID(context.Background(), "user-gone")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized for a vanished user", err)
	}
}
