package service

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInactiveUser          = errors.New("inactive user")
	ErrInsufficientPrivilege = errors.New("insufficient privileges")
	ErrNotFound              = errors.New("user not found")
	ErrValidation            = errors.New("validation failed")

	ErrInvalidTOTPCode    = errors.New("invalid TOTP code")
	ErrTOTPNotEnrolled    = errors.New("TOTP not enrolled")
	ErrTOTPAlreadyEnabled = errors.New("TOTP already enabled")
	ErrTOTPNotEnabled     = errors.New("TOTP not enabled")
)

// DuplicateFieldError reports that a unique user attribute is already taken.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already registered", e.Field)
}

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// asValidationError converts ozzo-validation output. Internal rule errors are
// returned unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for name, ferr := range verrs {
		fields[name] = ferr.Error()
	}
	return &ValidationError{Fields: fields}
}
