package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type RegisterHandler struct {
	UserService *service.UserService
}

// ServeHTTP creates a regular account.
//
//	@Summary		Register
//	@Description	Creates an active, non-admin account. Usernames and emails are unique.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	accountsdk.UserResponse
//	@Failure		400		{object}	accountsdk.APIError	"Username or email already registered"
//	@Failure		422		{object}	accountsdk.APIError	"Validation failed"
//	@Router			/register [post]
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RegisterRequest
	if apiErr := decodeJSONBody(w, r, &req, false); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	user, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}
