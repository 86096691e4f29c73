/*
Package accountsdk is the Go client for the accounts service, and the home of
the wire types and API errors the server writes.

# Client vs Session

Client covers the unauthenticated endpoints and creates Sessions:

	client := accountsdk.NewClient("http://localhost:8080", "/api/v1")

	user, err := client.Register(ctx, accountsdk.RegisterRequest{
		Name:     "Alice",
		Username: "alice",
		Password: "pw12345678",
	})

	session, err := client.Login(ctx, "alice", "pw12345678", "")

A Session carries the bearer token and covers everything behind it:

	me, err := session.Me(ctx)

	// Admin only
	users, err := session.ListUsers(ctx, 0, 100)
	alice, err := session.SetAdmin(ctx, me.ID, true)

There are no refresh tokens. When the access token expires, log in again.

# Errors

Non-2xx responses come back as *APIError, carrying the HTTP status, a stable
machine code and the human message:

	var apiErr *accountsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		// back off
	}

Validation failures (422) also carry per-field messages in Details.
*/
package accountsdk
