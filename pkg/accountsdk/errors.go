package accountsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// Machine readable error codes, stable across releases.
const (
	ErrorCodeNotAuthenticated   = "not_authenticated"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInactiveUser       = "inactive_user"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeAlreadyRegistered  = "already_registered"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeValidation         = "validation_error"
	ErrorCodeInvalidTOTPCode    = "invalid_totp_code"
	ErrorCodeTOTPState          = "totp_state"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error body every endpoint returns. The server writes it with
// WriteError and the client decodes failed responses into it.
type APIError struct {
	StatusCode int               `json:"status"`
	Code       string            `json:"error"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// WriteError writes e to w. 401 responses carry a Bearer challenge.
func (e *APIError) WriteError(w http.ResponseWriter) {
	if e.StatusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if len(e.Details) == 0 {
		httpx.WriteError(w, e.StatusCode, e.Code, e.Message)
		return
	}
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithDetails returns a copy of e carrying per-field messages.
func (e *APIError) WithDetails(details map[string]string) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrNotAuthenticated = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeNotAuthenticated,
		Message:    "Could not validate credentials",
	}

	ErrIncorrectLogin = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "Incorrect username or password",
	}

	ErrInactiveUser = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInactiveUser,
		Message:    "Inactive user",
	}

	ErrInsufficientPrivileges = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "The user doesn't have enough privileges",
	}

	ErrUsernameRegistered = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeAlreadyRegistered,
		Message:    "Username already registered",
	}

	ErrEmailRegistered = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeAlreadyRegistered,
		Message:    "Email already registered",
	}

	ErrUserNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "User not found",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "Rate limit exceeded. Please try again later.",
	}

	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "The request is malformed",
	}

	ErrValidation = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeValidation,
		Message:    "Request validation failed",
	}

	ErrInvalidTOTPCode = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidTOTPCode,
		Message:    "Invalid TOTP code",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "Internal Server Error",
	}
)

// NewAPIError builds an APIError for cases without a predefined value.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{StatusCode: status, Code: code, Message: message}
}

// parseErrorResponse decodes a failed response. Bodies that are not an
// APIError (a proxy page, say) become a generic error for the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
