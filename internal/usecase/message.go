package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"whisperbox/internal/model"
	"whisperbox/internal/repository"
)

// MessageUsecase defines the public, unauthenticated message ingestion path.
type MessageUsecase interface {
	SendMessage(ctx context.Context, recipientUsername, content string) error
}

// MaxMessageLength bounds the content of an inbound anonymous message.
const MaxMessageLength = 300

var (
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrNotAcceptingMessages = errors.New("recipient is not accepting messages")
	ErrInvalidContent       = errors.New("message content is empty or too long")
)

type messageUsecase struct {
	userRepo repository.UserRepository
}

// NewMessageUsecase creates a new instance of MessageUsecase.
func NewMessageUsecase(userRepo repository.UserRepository) MessageUsecase {
	return &messageUsecase{userRepo: userRepo}
}

// SendMessage resolves the recipient, checks the inbox gate, validates the
// content and appends it with a server-assigned id and timestamp. The sender
// identity is never recorded.
func (u *messageUsecase) SendMessage(ctx context.Context, recipientUsername, content string) error {
	recipient, err := u.userRepo.GetUserByUsername(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRecipientNotFound
		}
		return err
	}

	if !recipient.AcceptingMessages {
		return ErrNotAcceptingMessages
	}

	if strings.TrimSpace(content) == "" || utf8.RuneCountInString(content) > MaxMessageLength {
		return ErrInvalidContent
	}

	message := model.Message{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now(),
	}

	// The append re-checks the gate in the same update, so a concurrent
	// toggle cannot slip a message into a closed inbox.
	matched, err := u.userRepo.AppendMessage(ctx, recipientUsername, message)
	if err != nil {
		return err
	}
	if matched == 0 {
		return ErrNotAcceptingMessages
	}

	return nil
}
