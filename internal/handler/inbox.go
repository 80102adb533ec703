package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"whisperbox/internal/middleware"
	"whisperbox/internal/usecase"
)

// InboxHandler serves the authenticated inbox endpoints: the accept-messages
// gate and message listing/deletion. The account id always comes from the
// auth middleware, never from the request payload.
type InboxHandler struct {
	inbox     usecase.InboxUsecase
	validator *requestValidator
	logger    *zerolog.Logger
}

// NewInboxHandler creates a new InboxHandler.
func NewInboxHandler(inbox usecase.InboxUsecase, logger *zerolog.Logger) *InboxHandler {
	return &InboxHandler{
		inbox:     inbox,
		validator: newRequestValidator(),
		logger:    logger,
	}
}

func (h *InboxHandler) GetAccepting(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	accepting, err := h.inbox.GetAccepting(r.Context(), accountID)

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, acceptingResponse{
			Success:            true,
			Message:            "Accept-messages setting fetched",
			IsAcceptingMessage: accepting,
		})
	case errors.Is(err, usecase.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "Account not found")
	default:
		h.logger.Error().Err(err).Msg("failed to get accept-messages setting")
		respondInternalError(w)
	}
}

func (h *InboxHandler) SetAccepting(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req setAcceptingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validator.checkStruct(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	accepting, err := h.inbox.SetAccepting(r.Context(), accountID, *req.AcceptMessages)

	switch {
	case err == nil:
		message := "You are now accepting messages"
		if !accepting {
			message = "You are no longer accepting messages"
		}
		writeJSON(w, http.StatusOK, acceptingResponse{
			Success:            true,
			Message:            message,
			IsAcceptingMessage: accepting,
		})
	case errors.Is(err, usecase.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "Account not found")
	default:
		h.logger.Error().Err(err).Msg("failed to update accept-messages setting")
		respondInternalError(w)
	}
}

func (h *InboxHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	messages, err := h.inbox.ListMessages(r.Context(), accountID)

	switch {
	case err == nil:
		items := make([]messageItem, len(messages))
		for i, m := range messages {
			items[i] = messageItem{
				ID:        m.ID,
				Content:   m.Content,
				CreatedAt: m.CreatedAt,
			}
		}
		writeJSON(w, http.StatusOK, listMessagesResponse{
			Success:  true,
			Message:  "Messages fetched",
			Messages: items,
		})
	case errors.Is(err, usecase.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "Account not found")
	default:
		h.logger.Error().Err(err).Msg("failed to list messages")
		respondInternalError(w)
	}
}

func (h *InboxHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	messageID := chi.URLParam(r, "id")

	err := h.inbox.DeleteMessage(r.Context(), accountID, messageID)

	switch {
	case err == nil:
		respondMessage(w, http.StatusOK, "Message deleted")
	case errors.Is(err, usecase.ErrMessageNotFound):
		respondError(w, http.StatusNotFound, "Message not found")
	default:
		h.logger.Error().Err(err).Msg("failed to delete message")
		respondInternalError(w)
	}
}
