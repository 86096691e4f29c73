package accountsdk

import (
	"context"
	"net/http"
)

// Me returns the caller's account.
func (s *Session) Me(ctx context.Context) (UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return UserResponse{}, err
	}

	var out UserResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// UpdateMe changes the caller's name, email or password.
func (s *Session) UpdateMe(ctx context.Context, req UpdateUserRequest) (UserResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return UserResponse{}, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/users/me", body, headers)
	if err != nil {
		return UserResponse{}, err
	}

	var out UserResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// EnrollTOTP starts TOTP enrolment and returns the pending secret.
func (s *Session) EnrollTOTP(ctx context.Context) (TOTPEnrollResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/users/me/totp", nil, nil)
	if err != nil {
		return TOTPEnrollResponse{}, err
	}

	var out TOTPEnrollResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// VerifyTOTP confirms enrolment with a current code.
func (s *Session) VerifyTOTP(ctx context.Context, code string) (UserResponse, error) {
	return s.totpCode(ctx, http.MethodPost, "/users/me/totp/verify", code)
}

// DisableTOTP removes the second factor. A current code is required.
func (s *Session) DisableTOTP(ctx context.Context, code string) (UserResponse, error) {
	return s.totpCode(ctx, http.MethodDelete, "/users/me/totp", code)
}

func (s *Session) totpCode(ctx context.Context, method, path, code string) (UserResponse, error) {
	body, headers, err := jsonBody(TOTPCodeRequest{Code: code})
	if err != nil {
		return UserResponse{}, err
	}

	resp, err := s.doAuthRequest(ctx, method, path, body, headers)
	if err != nil {
		return UserResponse{}, err
	}

	var out UserResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}
