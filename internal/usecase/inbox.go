package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"whisperbox/internal/model"
	"whisperbox/internal/repository"
)

// InboxUsecase defines the session-scoped inbox operations: the
// accept-messages gate plus listing and deleting received messages. Every
// operation takes an already-resolved account id; identity resolution happens
// at the HTTP boundary.
type InboxUsecase interface {
	GetAccepting(ctx context.Context, accountID string) (bool, error)
	SetAccepting(ctx context.Context, accountID string, accepting bool) (bool, error)
	ListMessages(ctx context.Context, accountID string) ([]model.Message, error)
	DeleteMessage(ctx context.Context, accountID, messageID string) error
}

var ErrMessageNotFound = errors.New("message not found")

type inboxUsecase struct {
	userRepo repository.UserRepository
}

// NewInboxUsecase creates a new instance of InboxUsecase.
func NewInboxUsecase(userRepo repository.UserRepository) InboxUsecase {
	return &inboxUsecase{userRepo: userRepo}
}

func (u *inboxUsecase) GetAccepting(ctx context.Context, accountID string) (bool, error) {
	user, err := u.userRepo.GetUser(ctx, accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrAccountNotFound
		}
		return false, err
	}

	return user.AcceptingMessages, nil
}

func (u *inboxUsecase) SetAccepting(ctx context.Context, accountID string, accepting bool) (bool, error) {
	user, err := u.userRepo.SetAcceptingMessages(ctx, accountID, accepting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrAccountNotFound
		}
		return false, err
	}

	return user.AcceptingMessages, nil
}

// ListMessages returns the account's messages most-recent-first. The store
// keeps them in append order; the reversal happens here, not in the store.
func (u *inboxUsecase) ListMessages(ctx context.Context, accountID string) ([]model.Message, error) {
	user, err := u.userRepo.GetUser(ctx, accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	messages := make([]model.Message, len(user.Messages))
	for i, m := range user.Messages {
		messages[len(user.Messages)-1-i] = m
	}

	return messages, nil
}

// DeleteMessage removes one message from the caller's own inbox. A message id
// belonging to another account reports the same ErrMessageNotFound as a truly
// absent id, so existence never leaks across owners.
func (u *inboxUsecase) DeleteMessage(ctx context.Context, accountID, messageID string) error {
	modified, err := u.userRepo.DeleteMessage(ctx, accountID, messageID)
	if err != nil {
		return err
	}
	if modified == 0 {
		return ErrMessageNotFound
	}

	return nil
}
