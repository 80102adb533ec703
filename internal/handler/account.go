package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"whisperbox/internal/usecase"
)

// AccountHandler serves the public account lifecycle endpoints.
type AccountHandler struct {
	accounts  usecase.AccountUsecase
	validator *requestValidator
	logger    *zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts usecase.AccountUsecase, logger *zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		validator: newRequestValidator(),
		logger:    logger,
	}
}

func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validator.checkStruct(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.accounts.SignUp(r.Context(), usecase.SignUpParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})

	switch {
	case err == nil:
		respondMessage(w, http.StatusOK, "Account registered. Please check your email for the verification code.")
	case errors.Is(err, usecase.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, "Username is already taken")
	case errors.Is(err, usecase.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "An account already exists with this email")
	case errors.Is(err, usecase.ErrNotificationFailed):
		h.logger.Error().Err(err).Str("username", req.Username).Msg("verification email dispatch failed")
		respondError(w, http.StatusInternalServerError,
			"Failed to send the verification email. Submitting the signup again is safe.")
	default:
		h.logger.Error().Err(err).Msg("failed to sign up")
		respondInternalError(w)
	}
}

func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validator.checkStruct(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.accounts.VerifyAccount(r.Context(), req.Username, req.Code)

	switch {
	case err == nil:
		respondMessage(w, http.StatusOK, "Account verified successfully")
	case errors.Is(err, usecase.ErrAccountNotFound):
		respondError(w, http.StatusBadRequest, "Account not found")
	case errors.Is(err, usecase.ErrCodeMismatch):
		respondError(w, http.StatusBadRequest, "Incorrect verification code")
	case errors.Is(err, usecase.ErrCodeExpired):
		respondError(w, http.StatusBadRequest, "Verification code has expired. Please sign up again to get a new code.")
	default:
		h.logger.Error().Err(err).Msg("failed to verify account")
		respondInternalError(w)
	}
}

func (h *AccountHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if !h.validator.checkVar(username, "required,min=2,max=20,alphanum") {
		respondError(w, http.StatusBadRequest, "Invalid username")
		return
	}

	available, err := h.accounts.CheckUsername(r.Context(), username)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to check username")
		respondInternalError(w)
		return
	}

	if !available {
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Message: "Username is already taken"})
		return
	}

	respondMessage(w, http.StatusOK, "Username is available")
}
