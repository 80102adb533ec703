package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"whisperbox/internal/config"
	"whisperbox/internal/handler"
	"whisperbox/internal/middleware"
	"whisperbox/pkg/auth"
)

// Server is the HTTP server hosting the whisperbox API.
type Server struct {
	cfg        *config.Config
	logger     *zerolog.Logger
	httpServer *http.Server
}

// Handlers bundles the route handlers mounted on the router.
type Handlers struct {
	Account *handler.AccountHandler
	Auth    *handler.AuthHandler
	Message *handler.MessageHandler
	Inbox   *handler.InboxHandler
}

// New creates a Server with all routes and middleware wired.
func New(cfg *config.Config, logger *zerolog.Logger, jwtAuth auth.JWTAuthenticator, h Handlers) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.ServerAddress,
			Handler:           NewRouter(cfg, logger, jwtAuth, h),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter assembles the chi router with all routes and middleware.
func NewRouter(cfg *config.Config, logger *zerolog.Logger, jwtAuth auth.JWTAuthenticator, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", h.Account.SignUp)
		r.Post("/accounts/verify", h.Account.Verify)
		r.Get("/accounts/check-username", h.Account.CheckUsername)

		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)

		r.Post("/messages", h.Message.Send)
		r.Post("/messages/suggest", h.Message.Suggest)

		r.Route("/inbox", func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtAuth, cfg.Token.AccessTokenSecret))
			r.Get("/accept", h.Inbox.GetAccepting)
			r.Post("/accept", h.Inbox.SetAccepting)
			r.Get("/messages", h.Inbox.ListMessages)
			r.Delete("/messages/{id}", h.Inbox.DeleteMessage)
		})
	})

	return r
}

// Run starts the server and blocks until the context is cancelled or a
// shutdown signal arrives, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.cfg.ServerAddress).Msg("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
