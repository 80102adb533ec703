package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"whisperbox/internal/config"
	"whisperbox/internal/model"
	"whisperbox/internal/repository"
	"whisperbox/pkg/auth"
	"whisperbox/pkg/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Login(ctx context.Context, params LoginParams) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
}

// LoginParams defines the parameters for user login. Identifier is a
// username or an email address.
type LoginParams struct {
	Identifier string
	Password   string
	IPAddress  *string
	UserAgent  *string
}

// Tokens is an issued access/refresh token pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

var (
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrAccountNotVerified  = errors.New("account is not verified")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type authUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtAuth     auth.JWTAuthenticator
	tokenCfg    config.TokenConfig
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtAuth auth.JWTAuthenticator,
	tokenCfg config.TokenConfig,
) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtAuth:     jwtAuth,
		tokenCfg:    tokenCfg,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Tokens, error) {
	user, err := u.findUser(ctx, params.Identifier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, ErrAccountNotVerified
	}

	session, err := u.sessionRepo.CreateSession(ctx, &model.Session{
		UserID:    user.ID.Hex(),
		IPAddress: params.IPAddress,
		UserAgent: params.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, user.ID.Hex(), session.ID.Hex())
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims := &auth.SessionClaims{}
	if _, err := u.jwtAuth.ValidateTokenWithClaims(refreshToken, u.tokenCfg.RefreshTokenSecret, claims); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	session, err := u.sessionRepo.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	// Rotation: only the most recently issued refresh token is usable.
	if session.RefreshToken != refreshToken || time.Now().After(session.RefreshTokenExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	return u.issueTokens(ctx, session.UserID, session.ID.Hex())
}

func (u *authUsecase) findUser(ctx context.Context, identifier string) (*model.User, error) {
	user, err := u.userRepo.GetUserByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	return u.userRepo.GetUserByEmail(ctx, identifier)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID, sessionID string) (*Tokens, error) {
	accessToken, err := u.generateToken(
		userID,
		sessionID,
		u.tokenCfg.AccessTokenSecret,
		u.tokenCfg.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateToken(
		userID,
		sessionID,
		u.tokenCfg.RefreshTokenSecret,
		u.tokenCfg.RefreshTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := u.sessionRepo.UpdateTokens(ctx, sessionID, repository.UpdateTokensParams{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(u.tokenCfg.AccessTokenExpiresIn),
		RefreshTokenExpiresAt: now.Add(u.tokenCfg.RefreshTokenExpiresIn),
	}); err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *authUsecase) generateToken(userID, sessionID, secret string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := auth.SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.tokenCfg.Issuer,
			Audience:  jwt.ClaimStrings{u.tokenCfg.Issuer},
		},
	}

	return u.jwtAuth.GenerateToken(claims, secret)
}
