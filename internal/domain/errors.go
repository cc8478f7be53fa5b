package domain

import "fmt"

// ErrorKind is the closed set of failure classes the platform produces.
// The HTTP boundary switches on the kind exhaustively to pick a status
// code; handlers never match on error message text.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"      // 400
	KindAuthentication ErrorKind = "authentication"  // 401
	KindAuthorization  ErrorKind = "authorization"   // 403
	KindNotFound       ErrorKind = "not_found"       // 404
	KindConflict       ErrorKind = "conflict"        // 409
	KindCsrfMismatch   ErrorKind = "csrf_mismatch"   // 400
	KindUpstreamIdP    ErrorKind = "upstream_idp"    // 401
)

// Error is a tagged domain error. Code is the stable machine-readable
// value surfaced in the response body; Detail is diagnostic text that is
// only exposed when the service runs in dev mode.
type Error struct {
	Kind   ErrorKind
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Detail)
}

// Is matches two domain errors by kind and code so sentinel comparisons
// with errors.Is work even when a Detail was attached.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithDetail returns a copy carrying diagnostic text.
func (e *Error) WithDetail(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Detail: fmt.Sprintf(format, args...)}
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// The closed set of errors the auth core can produce.
var (
	ErrValidation         = newError(KindValidation, "validation_failed")
	ErrMissingToken       = newError(KindAuthentication, "missing_token")
	ErrInvalidToken       = newError(KindAuthentication, "invalid_token")
	ErrExpiredToken       = newError(KindAuthentication, "expired_token")
	ErrNotAuthenticated   = newError(KindAuthentication, "not_authenticated")
	ErrInvalidCredentials = newError(KindAuthentication, "invalid_credentials")
	ErrInsufficientRole   = newError(KindAuthorization, "insufficient_permissions")
	ErrUserNotFound       = newError(KindNotFound, "user_not_found")
	ErrNotFoundGeneric    = newError(KindNotFound, "not_found")
	ErrDuplicateEmail     = newError(KindConflict, "email_already_registered")
	ErrAlreadyApplied     = newError(KindConflict, "already_applied")

	// Refresh endpoint. A vanished user is an authentication failure here,
	// not a 404: the credential as a whole no longer identifies anyone.
	ErrRefreshMissing  = newError(KindValidation, "missing_token")
	ErrRefreshInvalid  = newError(KindAuthentication, "invalid_or_expired")
	ErrRefreshUserGone = newError(KindAuthentication, "user_not_found")

	// OAuth callback pipeline, one per short-circuit stage.
	ErrOAuthMissingParams   = newError(KindValidation, "missing_params")
	ErrOAuthCsrfMismatch    = newError(KindCsrfMismatch, "csrf_mismatch")
	ErrOAuthExchangeFailed  = newError(KindUpstreamIdP, "token_exchange_failed")
	ErrOAuthIDTokenInvalid  = newError(KindUpstreamIdP, "id_token_invalid")
	ErrOAuthInvalidIdentity = newError(KindValidation, "invalid_identity")
)
