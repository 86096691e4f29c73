package accountsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListUsers returns one page of accounts ordered by id. Admin only.
func (s *Session) ListUsers(ctx context.Context, skip, limit int) ([]UserResponse, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var out []UserResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// GetUser returns the account with id. Admin only.
func (s *Session) GetUser(ctx context.Context, id int64) (UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil)
	if err != nil {
		return UserResponse{}, err
	}

	var out UserResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// SetAdmin grants or revokes admin rights on the account with id. Admin only.
func (s *Session) SetAdmin(ctx context.Context, id int64, isAdmin bool) (UserResponse, error) {
	body, headers, err := jsonBody(SetAdminRequest{IsAdmin: isAdmin})
	if err != nil {
		return UserResponse{}, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut, fmt.Sprintf("/users/%d/admin", id), body, headers)
	if err != nil {
		return UserResponse{}, err
	}

	var out UserResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}
