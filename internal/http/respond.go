// Package http wires the platform's handlers, middleware and routes.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/pkg/httpx"
	"github.com/hireline/hireline/pkg/slogx"
)

// statusForKind maps the closed error taxonomy to HTTP statuses. Handlers
// never pick statuses ad hoc; everything flows through here.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindCsrfMismatch:
		return http.StatusBadRequest
	case domain.KindAuthentication, domain.KindUpstreamIdP:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service-layer failure. Tagged domain errors
// become their taxonomy status and code; anything else is a 500 with the
// detail kept out of the response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		status := statusForKind(derr.Kind)
		body := httpx.ErrorBody{Status: status, Error: derr.Code}
		if dev {
			body.Detail = derr.Detail
		}
		httpx.WriteJSON(w, status, body)
		return
	}

	slogx.FromContext(r.Context()).Error("unhandled error", slog.String("error", err.Error()))
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
}

// decodeJSONBody reads a JSON request body into dst. On failure it writes
// the 400 itself and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed")
		return false
	}
	return true
}

// principalFrom converts the verified claims placed by the authentication
// middleware into a principal. ok is false on unauthenticated requests.
func principalFrom(r *http.Request) (domain.Principal, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, true
}
