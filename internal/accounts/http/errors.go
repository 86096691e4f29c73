package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// writeServiceError maps service errors onto API errors. Anything unknown is
// logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErrorFor(r, err).WriteError(w)
}

func apiErrorFor(r *http.Request, err error) *accountsdk.APIError {
	var (
		dup  *service.DuplicateFieldError
		verr *service.ValidationError
	)

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return accountsdk.ErrNotAuthenticated
	case errors.Is(err, service.ErrInactiveUser):
		return accountsdk.ErrInactiveUser
	case errors.Is(err, service.ErrInsufficientPrivilege):
		return accountsdk.ErrInsufficientPrivileges
	case errors.As(err, &dup):
		if dup.Field == "email" {
			return accountsdk.ErrEmailRegistered
		}
		return accountsdk.ErrUsernameRegistered
	case errors.As(err, &verr):
		return accountsdk.ErrValidation.WithDetails(verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		return accountsdk.ErrUserNotFound
	case errors.Is(err, service.ErrInvalidTOTPCode):
		return accountsdk.ErrInvalidTOTPCode
	case errors.Is(err, service.ErrTOTPAlreadyEnabled):
		return accountsdk.NewAPIError(http.StatusBadRequest, accountsdk.ErrorCodeTOTPState, "TOTP is already enabled")
	case errors.Is(err, service.ErrTOTPNotEnrolled):
		return accountsdk.NewAPIError(http.StatusBadRequest, accountsdk.ErrorCodeTOTPState, "TOTP enrolment has not been started")
	case errors.Is(err, service.ErrTOTPNotEnabled):
		return accountsdk.NewAPIError(http.StatusBadRequest, accountsdk.ErrorCodeTOTPState, "TOTP is not enabled")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		return accountsdk.ErrServerError
	}
}

// validationError reports a single malformed input as a 422.
func validationError(field, msg string) *accountsdk.APIError {
	return accountsdk.ErrValidation.WithDetails(map[string]string{field: msg})
}
