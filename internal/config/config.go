package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the service configuration, parsed from environment variables.
type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"   envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	MongoURI      string        `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"whisperbox"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT"  envDefault:"5s"`

	// VerifyCodeTTL is the window during which a signup verification code is
	// valid and the username stays reserved for the pending account.
	VerifyCodeTTL time.Duration `env:"VERIFY_CODE_TTL" envDefault:"1h"`

	Token   TokenConfig   `envPrefix:"TOKEN_"`
	Suggest SuggestConfig `envPrefix:"SUGGEST_"`
}

// TokenConfig holds JWT issuance configuration.
type TokenConfig struct {
	Issuer                string        `env:"ISSUER" envDefault:"whisperbox"`
	AccessTokenSecret     string        `env:"ACCESS_SECRET"`
	RefreshTokenSecret    string        `env:"REFRESH_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_EXPIRES_IN"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_EXPIRES_IN" envDefault:"168h"`
}

// SuggestConfig holds configuration for the optional AI question-suggestion
// provider. When Provider is empty the capability is disabled.
type SuggestConfig struct {
	Provider string `env:"PROVIDER"` // "gemini" or "openai"
	APIKey   string `env:"API_KEY"`
	Model    string `env:"MODEL"    envDefault:"gemini-1.5-flash"`
	BaseURL  string `env:"BASE_URL"`
}

// Load creates a Config instance from environment variables.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing TOKEN_ACCESS_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing TOKEN_REFRESH_SECRET environment variable")
	}

	return nil
}
