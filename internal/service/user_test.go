package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jcrawley/miniblog/internal/apperror"
	"github.com/jcrawley/miniblog/internal/auth"
	"github.com/jcrawley/miniblog/internal/model"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockUserRepo implements repository.UserRepository in memory. The
// service doesn't know which implementation it gets — that's the point
// of programming to the interface: tests run in microseconds with no
// database.

type mockUserRepo struct {
	users  []*model.User // slice, not map — List must preserve insertion order
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

// =========================================================================
// TEST HELPER
// =========================================================================

func newTestUserService(t *testing.T) (*UserService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)
	svc := NewUserService(repo, passwords, tokens, logger)
	return svc, repo
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate_Success(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Create(context.Background(), "Alice", "alice", "pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("expected user to have an ID")
	}
	if user.Name != "Alice" {
		t.Errorf("Name = %q, want %q", user.Name, "Alice")
	}
	if user.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if user.PasswordHash == "pw" {
		t.Error("password must never be stored as plaintext")
	}
}

func TestUserCreate_NameOnly(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Create(context.Background(), "Solo", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Username != "" {
		t.Errorf("Username = %q, want empty default", user.Username)
	}
	if user.PasswordHash != "" {
		t.Errorf("PasswordHash = %q, want empty for passwordless account", user.PasswordHash)
	}
}

func TestUserCreate_EmptyName(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Create(context.Background(), "", "alice", "pw")
	if err == nil {
		t.Fatal("Create() should error on empty name")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUserCreate_WhitespaceOnlyName(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Create(context.Background(), "   ", "", "")
	if err == nil {
		t.Fatal("Create() should error on whitespace-only name")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUserCreate_ThenGet(t *testing.T) {
	svc, _ := newTestUserService(t)

	created, err := svc.Create(context.Background(), "Bob", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Bob" {
		t.Errorf("Name = %q, want %q", found.Name, "Bob")
	}
	if found.Username != "" {
		t.Errorf("Username = %q, want empty default", found.Username)
	}
}

// =========================================================================
// GET / LIST TESTS
// =========================================================================

func TestUserGetByID_NotFound(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_BlankID(t *testing.T) {
	svc, _ := newTestUserService(t)

	// A blank id can't resolve to anything — normalized to NotFound,
	// never a crash.
	_, err := svc.GetByID(context.Background(), "  ")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUserList_InsertionOrder(t *testing.T) {
	svc, _ := newTestUserService(t)

	for _, name := range []string{"A", "B", "C"} {
		if _, err := svc.Create(context.Background(), name, "", ""); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(users))
	}
	for i, want := range []string{"A", "B", "C"} {
		if users[i].Name != want {
			t.Errorf("users[%d].Name = %q, want %q", i, users[i].Name, want)
		}
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestUserService(t)

	created, err := svc.Create(context.Background(), "Alice", "alice", "pw")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != created.ID {
		t.Errorf("Login() user = %s, want %s", result.User.ID, created.ID)
	}
	if result.Token == "" {
		t.Error("Login() should issue a session token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestUserService(t)

	if _, err := svc.Create(context.Background(), "Alice", "alice", "pw"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := svc.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_CaseSensitivePassword(t *testing.T) {
	svc, _ := newTestUserService(t)

	if _, err := svc.Create(context.Background(), "Alice", "alice", "Secret"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := svc.Login(context.Background(), "alice", "secret")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Login(context.Background(), "ghost", "pw")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_PasswordlessAccount(t *testing.T) {
	svc, _ := newTestUserService(t)

	// Registered with no password → empty hash → can never log in,
	// not even with an empty password.
	if _, err := svc.Create(context.Background(), "NoPw", "nopw", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := svc.Login(context.Background(), "nopw", "")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}
