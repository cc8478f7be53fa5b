// Package service holds the business logic between the HTTP handlers and
// the store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/pkg/jwtx"
)

// TokenService issues and verifies the session token pair.
type TokenService struct {
	Signer     *jwtx.HS256
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// IssuePair mints a fresh access and refresh token for the principal. The
// two tokens carry identical identity claims; only kind and expiry differ.
func (s *TokenService) IssuePair(p domain.Principal) (domain.TokenPair, error) {
	now := time.Now()

	access, err := s.Signer.Sign(jwtx.NewSessionClaims(
		p.ID, p.Email, p.Role, jwtx.KindAccess, s.AccessTTL, s.Issuer, now))
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Signer.Sign(jwtx.NewSessionClaims(
		p.ID, p.Email, p.Role, jwtx.KindRefresh, s.RefreshTTL, s.Issuer, now))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token and returns its principal. Expiry is
// reported distinctly so callers can tell the client a refresh is worthwhile.
func (s *TokenService) VerifyAccess(token string) (domain.Principal, error) {
	claims, err := s.Signer.Verify(token, jwtx.KindAccess)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Principal{}, domain.ErrExpiredToken
		}
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return principalFromClaims(claims), nil
}

// Refresh exchanges a refresh token for a new pair. The user's current role
// is re-read from the store so a role change takes effect at the next
// refresh instead of persisting for the refresh token's whole lifetime.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.User, domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.User{}, domain.TokenPair{}, domain.ErrRefreshMissing
	}

	claims, err := s.Signer.Verify(refreshToken, jwtx.KindRefresh)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, domain.ErrRefreshInvalid
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, domain.ErrRefreshUserGone
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.IssuePair(domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

func principalFromClaims(c jwtx.SessionClaims) domain.Principal {
	return domain.Principal{ID: c.Subject, Email: c.Email, Role: c.Role}
}
