package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Login exchanges credentials for a Session. otpCode is only needed once the
// account has TOTP enabled.
func (c *Client) Login(ctx context.Context, username, password, otpCode string) (*Session, error) {
	tok, err := c.Token(ctx, username, password, otpCode)
	if err != nil {
		return nil, err
	}
	return c.NewSession(tok.AccessToken), nil
}

// Token performs POST /login and returns the raw token response.
func (c *Client) Token(ctx context.Context, username, password, otpCode string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	if otpCode != "" {
		form.Set("otp_code", otpCode)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.apiURL("/login"),
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return TokenResponse{}, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return TokenResponse{}, err
	}
	return out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return UserResponse{}, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.apiURL("/register"), body, headers)
	if err != nil {
		return UserResponse{}, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return UserResponse{}, err
	}
	return out, nil
}
