package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP exchanges a username and password for an access token.
//
//	@Summary		Log in
//	@Description	OAuth2 password-style login. Accounts with TOTP enabled must also send otp_code.
//	@Tags			Authentication
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Username"
//	@Param			password	formData	string	true	"Password"
//	@Param			otp_code	formData	string	false	"Current TOTP code"
//	@Success		200			{object}	accountsdk.TokenResponse
//	@Failure		401			{object}	accountsdk.APIError	"Incorrect username or password"
//	@Failure		422			{object}	accountsdk.APIError	"Missing form fields"
//	@Failure		429			{object}	accountsdk.APIError	"Rate limited"
//	@Router			/login [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := parseLoginForm(r); err != nil {
		validationError("body", "invalid form body").WriteError(w)
		return
	}

	if gt := r.PostFormValue("grant_type"); gt != "" && gt != "password" {
		validationError("grant_type", "must be password").WriteError(w)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	switch {
	case username == "":
		validationError("username", "cannot be blank").WriteError(w)
		return
	case password == "":
		validationError("password", "cannot be blank").WriteError(w)
		return
	}

	tok, err := h.AuthService.Login(r.Context(), username, password, r.PostFormValue("otp_code"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		accountsdk.ErrIncorrectLogin.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.TokenResponse{
		AccessToken: tok.Token,
		TokenType:   tok.Type,
		ExpiresIn:   tok.ExpiresIn,
	})
}

func parseLoginForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}
