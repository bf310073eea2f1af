// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)      → parses requests, writes responses
//	Service (this pkg)  → validates, enforces rules, orchestrates
//	Repository (data)   → reads/writes the store
//
// Services depend on the repository INTERFACES, not the SQLite types, so
// tests inject in-memory mocks and the handlers stay HTTP-only.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcrawley/miniblog/internal/apperror"
	"github.com/jcrawley/miniblog/internal/auth"
	"github.com/jcrawley/miniblog/internal/model"
	"github.com/jcrawley/miniblog/internal/repository"
)

// UserService handles registration, lookup, and login.
type UserService struct {
	repo      repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewUserService creates a UserService. The caller decides which
// repository implementation to inject (SQLite in production, a mock in
// tests).
func NewUserService(
	repo repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// LoginResult bundles the authenticated user with the issued session
// token so the handler can set the cookie and respond in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

// List returns all users in insertion order.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetByID returns a single user. Any id that doesn't resolve — including
// a blank one — is a NotFound, never a crash.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Create registers a new user.
//
// Only name is required; username and password default to "". A
// non-empty password is bcrypt-hashed before it ever reaches the store —
// the raw string is not retained anywhere. A user registered without a
// password has an empty hash and can never log in.
func (s *UserService) Create(ctx context.Context, name, username, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	user := &model.User{
		Name:     name,
		Username: username,
	}

	if password != "" {
		hash, err := s.passwords.Hash(password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login checks the given credentials and issues a session token.
//
// The lookup resolves the FIRST user with a matching username (usernames
// are not unique). Any failure — unknown username, wrong password, or a
// passwordless account — collapses into the same Unauthorized error so
// the response doesn't leak which usernames exist.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid username or password")
		}
		s.logger.Error("failed to look up user for login",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" || s.passwords.Verify(user.PasswordHash, password) != nil {
		return nil, apperror.Unauthorized("invalid username or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.logger.Error("failed to issue session token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{User: user, Token: token}, nil
}
