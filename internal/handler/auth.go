package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ikram-javatech/product-order-service/internal/domain/auth"
)

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token. Token is null on failure.
type LoginResponse struct {
	Token   *string `json:"token"`
	Message string  `json:"message"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, LoginResponse{
				Token:   nil,
				Message: "Invalid credentials",
			})
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:   &token,
		Message: "Login successful",
	})
}
