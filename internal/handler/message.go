package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"whisperbox/internal/usecase"
)

// MessageHandler serves the public, anonymous message ingestion endpoint and
// the optional question-suggestion endpoint.
type MessageHandler struct {
	messages  usecase.MessageUsecase
	suggest   usecase.SuggestUsecase
	validator *requestValidator
	logger    *zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(
	messages usecase.MessageUsecase,
	suggest usecase.SuggestUsecase,
	logger *zerolog.Logger,
) *MessageHandler {
	return &MessageHandler{
		messages:  messages,
		suggest:   suggest,
		validator: newRequestValidator(),
		logger:    logger,
	}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := h.validator.checkStruct(req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.messages.SendMessage(r.Context(), req.Username, req.Content)

	switch {
	case err == nil:
		respondMessage(w, http.StatusOK, "Message sent successfully")
	case errors.Is(err, usecase.ErrRecipientNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, usecase.ErrNotAcceptingMessages):
		respondError(w, http.StatusForbidden, "User is not accepting messages")
	case errors.Is(err, usecase.ErrInvalidContent):
		respondError(w, http.StatusBadRequest, "Message must be non-empty and at most 300 characters")
	default:
		h.logger.Error().Err(err).Msg("failed to send message")
		respondInternalError(w)
	}
}

func (h *MessageHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	questions, err := h.suggest.SuggestQuestions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to suggest questions")
		respondError(w, http.StatusInternalServerError, "Failed to generate question suggestions")
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{
		Success:   true,
		Message:   "Questions generated",
		Questions: questions,
	})
}
