package sessionsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned when an operation needs a session but the
// store holds no tokens.
var ErrNotAuthenticated = errors.New("sessionsdk: not authenticated")

// Error codes the client reacts to.
const (
	CodeExpiredToken = "expired_token"
)

// APIError is a structured error response from the platform.
type APIError struct {
	Status int    `json:"status"`
	Code   string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Code, e.Detail)
}

// IsCode reports whether err is an APIError carrying the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-success response body into an APIError.
// Bodies that are not the standard envelope still produce a usable error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
