package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"whisperbox/internal/config"
	"whisperbox/internal/handler"
	"whisperbox/internal/repository"
	"whisperbox/internal/server"
	"whisperbox/internal/usecase"
	"whisperbox/pkg/ai"
	"whisperbox/pkg/auth"
	"whisperbox/pkg/mailer"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Load(&logger)

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.MongoURI).
		SetTimeout(cfg.StoreTimeout))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.MongoDatabase)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	userRepo := repository.NewUserMongoRepository(indexCtx, &logger, db)
	sessionRepo := repository.NewSessionMongoRepository(db)

	smtpMailer := mailer.NewMailer(&logger)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	accountUsecase := usecase.NewAccountUsecase(userRepo, smtpMailer, cfg.VerifyCodeTTL, &logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sessionRepo, jwtAuth, cfg.Token)
	messageUsecase := usecase.NewMessageUsecase(userRepo)
	inboxUsecase := usecase.NewInboxUsecase(userRepo)
	suggestUsecase := usecase.NewSuggestUsecase(newTextGenerator(cfg, &logger))

	srv := server.New(cfg, &logger, jwtAuth, server.Handlers{
		Account: handler.NewAccountHandler(accountUsecase, &logger),
		Auth:    handler.NewAuthHandler(authUsecase, &logger),
		Message: handler.NewMessageHandler(messageUsecase, suggestUsecase, &logger),
		Inbox:   handler.NewInboxHandler(inboxUsecase, &logger),
	})

	if err := srv.Run(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}

// newTextGenerator builds the configured suggestion provider, or nil when the
// capability is disabled.
func newTextGenerator(cfg *config.Config, logger *zerolog.Logger) ai.TextGenerator {
	switch strings.ToLower(cfg.Suggest.Provider) {
	case "":
		logger.Info().Msg("question suggestions disabled: no provider configured")
		return nil
	case "gemini":
		generator, err := ai.NewGeminiGenerator(cfg.Suggest.APIKey, cfg.Suggest.Model)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure Gemini generator")
		}
		return generator
	case "openai":
		generator, err := ai.NewOpenAICompatGenerator(cfg.Suggest.BaseURL, cfg.Suggest.APIKey, cfg.Suggest.Model)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure OpenAI-compatible generator")
		}
		return generator
	default:
		logger.Fatal().Str("provider", cfg.Suggest.Provider).Msg("unknown suggestion provider")
		return nil
	}
}
