package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"whisperbox/internal/usecase"
)

// AuthHandler serves session issuance: sign-in and refresh-token rotation.
type AuthHandler struct {
	auth      usecase.AuthUsecase
	validator *requestValidator
	logger    *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth usecase.AuthUsecase, logger *zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: newRequestValidator(),
		logger:    logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validator.checkStruct(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	params := usecase.LoginParams{
		Identifier: req.Identifier,
		Password:   req.Password,
	}
	if addr := r.RemoteAddr; addr != "" {
		params.IPAddress = &addr
	}
	if ua := r.UserAgent(); ua != "" {
		params.UserAgent = &ua
	}

	tokens, err := h.auth.Login(r.Context(), params)

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokensResponse{
			Success:      true,
			Message:      "Signed in successfully",
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, usecase.ErrAccountNotVerified):
		respondError(w, http.StatusForbidden, "Please verify your account before signing in")
	default:
		h.logger.Error().Err(err).Msg("failed to sign in")
		respondInternalError(w)
	}
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validator.checkStruct(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokensResponse{
			Success:      true,
			Message:      "Tokens refreshed",
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		})
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		respondError(w, http.StatusUnauthorized, "Invalid refresh token")
	default:
		h.logger.Error().Err(err).Msg("failed to refresh tokens")
		respondInternalError(w)
	}
}
