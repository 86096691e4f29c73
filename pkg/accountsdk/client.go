package accountsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to an accounts service. It covers the unauthenticated
// endpoints; Login returns a Session for the rest.
type Client struct {
	// BaseURL is the scheme and host, e.g. "http://localhost:8080".
	BaseURL string

	// Prefix is the API mount point, e.g. "/api/v1".
	Prefix string

	HTTPClient *http.Client
}

func NewClient(baseURL, prefix string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Prefix:  "/" + strings.Trim(prefix, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Session is an authenticated view of the API for one access token. It is
// safe for concurrent use since it never mutates after creation.
type Session struct {
	client *Client
	token  string
}

// NewSession wraps an access token obtained elsewhere.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, token: accessToken}
}

// AccessToken returns the bearer token the session sends.
func (s *Session) AccessToken() string { return s.token }
