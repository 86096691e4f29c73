package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// HeaderTotalCount carries the unpaged number of users on list responses.
const HeaderTotalCount = "X-Total-Count"

type UsersHandler struct {
	UserService *service.UserService
}

// HandleGetMe returns the caller.
//
//	@Summary	Current user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	accountsdk.UserResponse
//	@Failure	400	{object}	accountsdk.APIError	"Inactive user"
//	@Failure	401	{object}	accountsdk.APIError	"Could not validate credentials"
//	@Router		/users/me [get]
func (h *UsersHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		accountsdk.ErrNotAuthenticated.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateMe changes the caller's name, email or password.
//
//	@Summary	Update current user
//	@Tags		Users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.UpdateUserRequest	true	"Fields to change"
//	@Success	200		{object}	accountsdk.UserResponse
//	@Failure	400		{object}	accountsdk.APIError	"Email already registered or inactive user"
//	@Failure	401		{object}	accountsdk.APIError	"Could not validate credentials"
//	@Failure	422		{object}	accountsdk.APIError	"Validation failed"
//	@Router		/users/me [put]
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		accountsdk.ErrNotAuthenticated.WriteError(w)
		return
	}

	var req accountsdk.UpdateUserRequest
	if apiErr := decodeJSONBody(w, r, &req, true); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	updated, err := h.UserService.UpdateProfile(r.Context(), user, service.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// HandleList pages through all accounts.
//
//	@Summary	List users
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Param		skip	query		int	false	"Offset"			default(0)
//	@Param		limit	query		int	false	"Page size, max 100"	default(100)
//	@Success	200		{array}		accountsdk.UserResponse
//	@Header		200		{integer}	X-Total-Count	"Total number of users"
//	@Failure	401		{object}	accountsdk.APIError	"Could not validate credentials"
//	@Failure	403		{object}	accountsdk.APIError	"The user doesn't have enough privileges"
//	@Router		/users [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	skip, apiErr := queryInt(r, "skip", 0)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}
	limit, apiErr := queryInt(r, "limit", service.DefaultPageSize)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	page, err := h.UserService.ListUsers(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]accountsdk.UserResponse, 0, len(page.Users))
	for _, u := range page.Users {
		out = append(out, toUserResponse(u))
	}

	w.Header().Set(HeaderTotalCount, strconv.FormatInt(page.Total, 10))
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns one account by id.
//
//	@Summary	Get user
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"User id"
//	@Success	200	{object}	accountsdk.UserResponse
//	@Failure	403	{object}	accountsdk.APIError	"The user doesn't have enough privileges"
//	@Failure	404	{object}	accountsdk.APIError	"User not found"
//	@Router		/users/{id} [get]
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, apiErr := pathID(r)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleSetAdmin grants or revokes admin rights. The flag comes from the
// is_admin query parameter or, failing that, a JSON body.
//
//	@Summary	Set admin flag
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int							true	"User id"
//	@Param		is_admin	query		bool						false	"New admin flag"
//	@Param		request		body		accountsdk.SetAdminRequest	false	"New admin flag"
//	@Success	200			{object}	accountsdk.UserResponse
//	@Failure	403			{object}	accountsdk.APIError	"The user doesn't have enough privileges"
//	@Failure	404			{object}	accountsdk.APIError	"User not found"
//	@Failure	422			{object}	accountsdk.APIError	"Missing or invalid is_admin"
//	@Router		/users/{id}/admin [put]
func (h *UsersHandler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	id, apiErr := pathID(r)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	isAdmin, apiErr := adminFlag(w, r)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	user, err := h.UserService.SetAdmin(r.Context(), id, isAdmin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func adminFlag(w http.ResponseWriter, r *http.Request) (bool, *accountsdk.APIError) {
	if raw := r.URL.Query().Get("is_admin"); raw != "" {
		v, ok := parseBool(raw)
		if !ok {
			return false, validationError("is_admin", "must be a boolean")
		}
		return v, nil
	}

	var req struct {
		IsAdmin *bool `json:"is_admin"`
	}
	if apiErr := decodeJSONBody(w, r, &req, true); apiErr != nil {
		return false, apiErr
	}
	if req.IsAdmin == nil {
		return false, validationError("is_admin", "is required")
	}
	return *req.IsAdmin, nil
}

// parseBool accepts the spellings form and query clients commonly send.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	case "0", "f", "false", "n", "no", "off":
		return false, true
	}
	return false, false
}

func queryInt(r *http.Request, name string, def int) (int, *accountsdk.APIError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validationError(name, "must be an integer")
	}
	return n, nil
}

func pathID(r *http.Request) (int64, *accountsdk.APIError) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, validationError("id", "must be an integer")
	}
	return id, nil
}
