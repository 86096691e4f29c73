package accountsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClient_NormalisesPaths(t *testing.T) {
	t.Parallel()

	c := NewClient("http://example.com/", "api/v1/")
	require.Equal(t, "http://example.com", c.BaseURL)
	require.Equal(t, "/api/v1", c.Prefix)
	require.Equal(t, "http://example.com/api/v1/users/me", c.apiURL("/users/me"))

	root := NewClient("http://example.com", "")
	require.Equal(t, "http://example.com/login", root.apiURL("/login"))
}

func TestLoginAndMe(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" || r.ParseForm() != nil {
			ErrInvalidRequest.WriteError(w)
			return
		}
		if r.PostForm.Get("password") != "pw12345678" || r.PostForm.Get("otp_code") != "123456" {
			ErrIncorrectLogin.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 1800})
	})
	mux.HandleFunc("GET /api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			ErrNotAuthenticated.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(UserResponse{ID: 1, Username: "alice"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "/api/v1")
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", "wrong", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, ErrorCodeInvalidCredentials, apiErr.Code)
	require.Equal(t, "Incorrect username or password", apiErr.Message)

	s, err := c.Login(ctx, "alice", "pw12345678", "123456")
	require.NoError(t, err)
	require.Equal(t, "tok", s.AccessToken())

	me, err := s.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)

	_, err = c.NewSession("other").Me(ctx)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, ErrorCodeNotAuthenticated, apiErr.Code)
}

func TestAPIError_WriteError(t *testing.T) {
	t.Parallel()

	t.Run("401 carries bearer challenge", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrNotAuthenticated.WriteError(rec)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		require.JSONEq(t,
			`{"status":401,"error":"not_authenticated","message":"Could not validate credentials"}`,
			rec.Body.String())
	})

	t.Run("details are included", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrValidation.WithDetails(map[string]string{"password": "too short"}).WriteError(rec)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Empty(t, rec.Header().Get("WWW-Authenticate"))

		var body APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "too short", body.Details["password"])
		require.Nil(t, ErrValidation.Details)
	})
}

func TestParseErrorResponse_NonJSON(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadGateway}
	err := parseErrorResponse(resp, []byte("<html>bad gateway</html>"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}
