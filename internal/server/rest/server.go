// Package rest is the HTTP transport of the relay.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/faithchat/relay/internal/logging"
	"github.com/faithchat/relay/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	ServiceName     = "faithchat-api"
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Authenticator resolves an Authorization header to an identity.
type Authenticator interface {
	RequireIdentity(ctx context.Context, header string) (string, error)
}

type Deps struct {
	Users     *services.UserService
	Chat      *services.ChatService
	Donations *services.DonationService
	Auth      Authenticator
	Logger    logging.Logger

	Production     bool
	AllowedOrigins []string
}

type Server struct {
	users      *services.UserService
	chat       *services.ChatService
	donations  *services.DonationService
	auth       Authenticator
	logger     logging.Logger
	production bool
	origins    []string
}

func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Server{
		users:      d.Users,
		chat:       d.Chat,
		donations:  d.Donations,
		auth:       d.Auth,
		logger:     logger.With("module", "rest"),
		production: d.Production,
		origins:    d.AllowedOrigins,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/", s.handleRoot)
	r.Get("/favicon.ico", s.handleFavicon)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealthz)

	r.Route("/auth", func(a chi.Router) {
		a.Post("/register", s.handleRegister)
		a.Post("/login", s.handleLogin)
		a.Post("/forgot", s.handleForgot)
		a.Post("/reset", s.handleReset)

		a.Group(func(private chi.Router) {
			private.Use(s.requireIdentity)
			private.Get("/whoami", s.handleWhoami)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(s.requireIdentity)
		private.Post("/chat", s.handleChat)
	})

	if s.donations != nil {
		r.Post("/donate/create-intent", s.handleCreateIntent)
		r.Post("/webhooks/stripe", s.handleStripeWebhook)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
