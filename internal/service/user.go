package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/pkg/cryptox"
	"github.com/hireline/hireline/pkg/idx"
	"github.com/hireline/hireline/pkg/slogx"
)

// MinPasswordLength is the minimum accepted password length on signup.
const MinPasswordLength = 8

// UserService implements registration, login and profile lookup.
type UserService struct {
	Store  store.Store
	Tokens *TokenService
}

// Register creates an account and signs the user in. Role is normalized to
// employee or employer; admin cannot be requested through signup.
func (s *UserService) Register(ctx context.Context, name, email, password, role string) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.TokenPair{}, domain.ErrValidation.WithDetail("name and a valid email are required")
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, domain.TokenPair{}, domain.ErrValidation.WithDetail("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.NormalizeSignupRole(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.TokenPair{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("role", user.Role))
	return user, pair, nil
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", user.ID))
		return domain.User{}, domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssuePair(domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Profile returns the user behind a verified principal. The store is the
// source of truth; a deleted user gets user_not_found even with a valid
// token.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpsertIdentity finds or creates the account behind a verified external
// identity. New accounts get an unusable random credential so the password
// login path can never match them.
func (s *UserService) UpsertIdentity(ctx context.Context, name, email, role string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	placeholder, err := cryptox.HashPassword(cryptox.MustGenerateToken(cryptox.TokenSize256))
	if err != nil {
		return domain.User{}, err
	}

	if name = strings.TrimSpace(name); name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: placeholder,
		Role:         domain.NormalizeSignupRole(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Raced with another sign-in for the same address.
			return s.Store.Users().GetUserByEmail(ctx, email)
		}
		return domain.User{}, err
	}

	l.Info("identity user created", slog.String("user_id", user.ID), slog.String("role", user.Role))
	return user, nil
}
