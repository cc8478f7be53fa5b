package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/pkg/cryptox"
	"github.com/hireline/hireline/pkg/jwtx"
	"github.com/hireline/hireline/pkg/slogx"
	"golang.org/x/oauth2"
)

// DefaultExchangeTimeout bounds the code-for-token exchange with the
// identity provider so a slow upstream cannot hold the callback open.
const DefaultExchangeTimeout = 10 * time.Second

// oauthState is what round-trips through the identity provider's state
// parameter: an anti-forgery nonce plus the role the user picked before
// leaving the site.
type oauthState struct {
	Nonce string `json:"nonce"`
	Role  string `json:"role"`
}

// OAuthCoordinator runs the Google sign-in flow: building the consent
// redirect and turning the provider's callback into a platform session.
type OAuthCoordinator struct {
	Users  *UserService
	Tokens *TokenService
	Config *oauth2.Config
	Keys   *jwtx.RemoteKeySet

	// ExchangeTimeout bounds the upstream exchange; zero means
	// DefaultExchangeTimeout.
	ExchangeTimeout time.Duration
}

// Start builds the consent URL for the chosen signup role. The returned
// nonce must be stored in a short-lived cookie and presented again on the
// callback.
func (s *OAuthCoordinator) Start(role string) (authURL, nonce string, err error) {
	nonce, err = cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", "", err
	}

	state, err := encodeState(oauthState{Nonce: nonce, Role: domain.NormalizeSignupRole(role)})
	if err != nil {
		return "", "", err
	}

	return s.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nonce, nil
}

// Callback validates the provider's response and signs the user in. Checks
// run strictly in order, cheapest first, and the CSRF comparison happens
// before any network call.
func (s *OAuthCoordinator) Callback(ctx context.Context, code, state, cookieNonce string) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if code == "" || state == "" {
		return domain.User{}, domain.TokenPair{}, domain.ErrOAuthMissingParams
	}

	st, err := decodeState(state)
	if err != nil || cookieNonce == "" || st.Nonce != cookieNonce {
		return domain.User{}, domain.TokenPair{}, domain.ErrOAuthCsrfMismatch
	}

	timeout := s.ExchangeTimeout
	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}
	exCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	token, err := s.Config.Exchange(exCtx, code)
	if err != nil {
		l.Warn("oauth code exchange failed", slog.String("error", err.Error()))
		return domain.User{}, domain.TokenPair{}, domain.ErrOAuthExchangeFailed
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return domain.User{}, domain.TokenPair{}, domain.ErrOAuthIDTokenInvalid
	}

	claims, err := s.Keys.VerifyGoogleIDToken(exCtx, rawIDToken, s.Config.ClientID)
	if err != nil {
		l.Warn("id token verification failed", slog.String("error", err.Error()))
		return domain.User{}, domain.TokenPair{}, domain.ErrOAuthIDTokenInvalid
	}

	if claims.Subject == "" || claims.Email == "" || !claims.EmailVerified {
		return domain.User{}, domain.TokenPair{}, domain.ErrOAuthInvalidIdentity
	}

	user, err := s.Users.UpsertIdentity(ctx, claims.Name, claims.Email, st.Role)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	return user, pair, nil
}

func encodeState(st oauthState) (string, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeState(s string) (oauthState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return oauthState{}, err
	}
	var st oauthState
	if err := json.Unmarshal(raw, &st); err != nil {
		return oauthState{}, err
	}
	return st, nil
}
