package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll starts TOTP enrolment.
//
//	@Summary		Start TOTP enrolment
//	@Description	Generates a pending secret. Login does not require a code until it is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.TOTPEnrollResponse
//	@Failure		400	{object}	accountsdk.APIError	"TOTP already enabled"
//	@Router			/users/me/totp [post]
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		accountsdk.ErrNotAuthenticated.WriteError(w)
		return
	}

	enrollment, err := h.MFAService.Enroll(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.TOTPEnrollResponse{
		Secret:     enrollment.Secret,
		OTPAuthURL: enrollment.URL,
		Issuer:     enrollment.Issuer,
		Account:    enrollment.Account,
	})
}

// HandleVerify confirms enrolment.
//
//	@Summary	Verify TOTP enrolment
//	@Tags		MFA
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.TOTPCodeRequest	true	"Current code"
//	@Success	200		{object}	accountsdk.UserResponse
//	@Failure	400		{object}	accountsdk.APIError	"Invalid code or not enrolled"
//	@Router		/users/me/totp/verify [post]
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.MFAService.Confirm)
}

// HandleDisable removes the second factor.
//
//	@Summary	Disable TOTP
//	@Tags		MFA
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.TOTPCodeRequest	true	"Current code"
//	@Success	200		{object}	accountsdk.UserResponse
//	@Failure	400		{object}	accountsdk.APIError	"Invalid code or TOTP not enabled"
//	@Router		/users/me/totp [delete]
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.MFAService.Disable)
}

func (h *MFAHandler) withCode(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, u domain.User, code string) (domain.User, error),
) {
	user, ok := userFromContext(r.Context())
	if !ok {
		accountsdk.ErrNotAuthenticated.WriteError(w)
		return
	}

	var req accountsdk.TOTPCodeRequest
	if apiErr := decodeJSONBody(w, r, &req, false); apiErr != nil {
		apiErr.WriteError(w)
		return
	}
	if req.Code == "" {
		validationError("code", "cannot be blank").WriteError(w)
		return
	}

	updated, err := apply(r.Context(), user, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}
