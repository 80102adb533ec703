package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"whisperbox/internal/model"
	"whisperbox/internal/repository"
	"whisperbox/pkg/security"
)

// AccountUsecase defines the account lifecycle: signup with username
// reservation, verification and username availability checks.
type AccountUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) error
	VerifyAccount(ctx context.Context, username, code string) error
	CheckUsername(ctx context.Context, username string) (bool, error)
}

// SignUpParams defines the parameters for account registration.
type SignUpParams struct {
	Username string
	Email    string
	Password string
}

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCodeMismatch       = errors.New("incorrect verification code")
	ErrCodeExpired        = errors.New("verification code has expired")
	ErrNotificationFailed = errors.New("failed to send verification email")
)

const verifyCodeLength = 6

// VerificationMailer dispatches verification codes to freshly registered
// accounts. Satisfied by mailer.Mailer.
type VerificationMailer interface {
	SendVerificationCode(to, username, code string, validFor time.Duration) error
}

type accountUsecase struct {
	userRepo      repository.UserRepository
	mailer        VerificationMailer
	verifyCodeTTL time.Duration
	logger        *zerolog.Logger
}

// NewAccountUsecase creates a new instance of AccountUsecase.
func NewAccountUsecase(
	userRepo repository.UserRepository,
	mailer VerificationMailer,
	verifyCodeTTL time.Duration,
	logger *zerolog.Logger,
) AccountUsecase {
	return &accountUsecase{
		userRepo:      userRepo,
		mailer:        mailer,
		verifyCodeTTL: verifyCodeTTL,
		logger:        logger,
	}
}

// SignUp reserves the username and provisions a pending account. An
// unverified account whose verification window has lapsed is overwritten in
// place; the overwrite is a single conditional update so two concurrent
// signups for the same slot cannot create divergent state.
func (u *accountUsecase) SignUp(ctx context.Context, params SignUpParams) error {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	code, err := generateVerifyCode(verifyCodeLength)
	if err != nil {
		return err
	}

	pending := repository.PendingSignupParams{
		Username:            params.Username,
		Email:               params.Email,
		PasswordHash:        passwordHash,
		VerifyCode:          code,
		VerifyCodeExpiresAt: time.Now().Add(u.verifyCodeTTL),
	}

	account, err := u.provisionPending(ctx, pending)
	if err != nil {
		return err
	}

	if err := u.mailer.SendVerificationCode(account.Email, account.Username, code, u.verifyCodeTTL); err != nil {
		// Make the pending account immediately reclaimable so resubmitting
		// the signup is safe.
		if expireErr := u.userRepo.ExpireVerification(ctx, account.ID.Hex()); expireErr != nil {
			u.logger.Error().Err(expireErr).
				Str("username", account.Username).
				Msg("failed to expire pending account after notification failure")
		}
		return ErrNotificationFailed
	}

	return nil
}

func (u *accountUsecase) provisionPending(
	ctx context.Context,
	pending repository.PendingSignupParams,
) (*model.User, error) {
	existing, err := u.userRepo.GetUserByUsername(ctx, pending.Username)
	switch {
	case err == nil:
		if existing.Verified {
			return nil, ErrUsernameTaken
		}

		account, err := u.userRepo.ReclaimPendingByUsername(ctx, pending.Username, pending)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Unverified but the window is still open: the username stays reserved.
				return nil, ErrUsernameTaken
			}
			if mongo.IsDuplicateKeyError(err) {
				// The overwrite would move the slot onto an email another
				// account already holds.
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		return account, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		// Username is free; the email may still be held by another account.

	default:
		return nil, err
	}

	byEmail, err := u.userRepo.GetUserByEmail(ctx, pending.Email)
	switch {
	case err == nil:
		if byEmail.Verified {
			return nil, ErrEmailTaken
		}

		account, err := u.userRepo.ReclaimPendingByEmail(ctx, pending.Email, pending)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrEmailTaken
			}
			if mongo.IsDuplicateKeyError(err) {
				// A concurrent signup claimed the username between the lookup
				// and the overwrite.
				return nil, ErrUsernameTaken
			}
			return nil, err
		}
		return account, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		account, err := u.userRepo.CreateUser(ctx, &model.User{
			Username:            pending.Username,
			Email:               pending.Email,
			PasswordHash:        pending.PasswordHash,
			Verified:            false,
			VerifyCode:          pending.VerifyCode,
			VerifyCodeExpiresAt: pending.VerifyCodeExpiresAt,
			AcceptingMessages:   true,
			Messages:            []model.Message{},
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the race against a concurrent signup for the same slot.
				return nil, ErrUsernameTaken
			}
			return nil, err
		}
		return account, nil

	default:
		return nil, err
	}
}

// VerifyAccount consumes the verification code and flips the account to
// verified. Re-submission after a successful verification is an idempotent
// success: the account stays verified and nothing is mutated.
func (u *accountUsecase) VerifyAccount(ctx context.Context, username, code string) error {
	user, err := u.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAccountNotFound
		}
		return err
	}

	if user.Verified {
		return nil
	}

	switch EvaluateCode(user.VerifyCode, user.VerifyCodeExpiresAt, code, time.Now()) {
	case CodeAccepted:
		return u.userRepo.MarkVerified(ctx, user.ID.Hex())
	case CodeExpired:
		return ErrCodeExpired
	default:
		return ErrCodeMismatch
	}
}

// CheckUsername reports whether a signup for the given username would be
// accepted right now. A lapsed unverified account counts as available.
func (u *accountUsecase) CheckUsername(ctx context.Context, username string) (bool, error) {
	user, err := u.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return true, nil
		}
		return false, err
	}

	if user.Verified {
		return false, nil
	}

	return time.Now().After(user.VerifyCodeExpiresAt), nil
}

// generateVerifyCode generates a fixed-length random numeric code.
func generateVerifyCode(length int) (string, error) {
	const digits = "0123456789"

	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		buf[i] = digits[n.Int64()]
	}

	return string(buf), nil
}
