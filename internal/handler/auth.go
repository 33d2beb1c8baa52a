package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pawnledger/ledger-engine/internal/service"
	"github.com/pawnledger/ledger-engine/pkg/response"
)

type AuthHandler struct {
	service   *service.AuthService
	validator *validator.Validate
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator.New(),
	}
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=4"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid login request", err)
		return
	}

	if err := h.service.Verify(r.Context(), req.Password); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]bool{"authenticated": true})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid change password request", err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]bool{"changed": true})
}
