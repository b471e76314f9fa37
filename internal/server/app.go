// Package server wires configuration, storage, the token authorities and the
// completion provider together, and runs the HTTP and optional gRPC listeners
// until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/faithchat/relay/internal/logging"
	"github.com/faithchat/relay/internal/server/auth"
	"github.com/faithchat/relay/internal/server/config"
	"github.com/faithchat/relay/internal/server/llm"
	"github.com/faithchat/relay/internal/server/repositories/repomanager"
	"github.com/faithchat/relay/internal/server/rest"
	"github.com/faithchat/relay/internal/server/services"

	gs "github.com/faithchat/relay/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	verifier *auth.Verifier
	users    *services.UserService
	rest     *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	repos, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	prompt, err := c.LoadSystemPrompt()
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	issuer := auth.NewIssuer(auth.IssuerConfig{
		SessionSecret: []byte(c.SecretKey),
		ResetSecret:   []byte(c.EffectiveResetSecret()),
		SessionTTL:    c.SessionTokenValidityDuration,
		ResetTTL:      c.ResetTokenValidityDuration,
		Leeway:        c.ClockSkewLeeway,
	})
	verifier := auth.NewVerifier(logger, buildStrategies(c, logger)...)

	users := services.NewUserService(repos.Users(), issuer, services.NewLogResetNotifier(logger), c.ResetURLBase,
		services.WithUserLogger(logger))

	provider := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
	})
	chat := services.NewChatService(provider, services.ChatConfig{
		SystemPrompt: prompt,
		HistoryLimit: c.HistoryLimit,
		Timeout:      c.ProviderTimeout,
	}, logger)

	var donations *services.DonationService
	if c.StripeSecretKey != "" {
		donations = services.NewStripeDonationService(c.StripeSecretKey, c.StripeWebhookSecret, logger)
	}

	srv := rest.NewServer(rest.Deps{
		Users:          users,
		Chat:           chat,
		Donations:      donations,
		Auth:           verifier,
		Logger:         logger,
		Production:     c.Production,
		AllowedOrigins: c.AllowedOrigins,
	})

	return &App{config: c, logger: logger, repos: repos, verifier: verifier, users: users, rest: srv}, nil
}

// buildStrategies returns the trust roots in the order they are tried: the
// local session secret first, then whichever external issuer is configured.
func buildStrategies(c *config.Config, logger logging.Logger) []auth.Strategy {
	strategies := []auth.Strategy{
		auth.NewLocalStrategy([]byte(c.SecretKey), auth.DecodeOptions{Leeway: c.ClockSkewLeeway}),
	}

	external := auth.DecodeOptions{
		Leeway:   c.ClockSkewLeeway,
		Audience: c.ExternalAudience,
		Issuer:   c.ExternalIssuer,
	}
	if c.ExternalJWKSURL != "" {
		keys := auth.NewKeyCache(c.ExternalJWKSURL,
			auth.WithTTL(c.KeyCacheTTL),
			auth.WithFetchTimeout(c.KeyFetchTimeout),
			auth.WithKeyCacheLogger(logger))
		strategies = append(strategies, auth.NewExternalJWKSStrategy(keys, c.ExternalAlgorithms, external))
	}
	if c.ExternalSecretKey != "" {
		strategies = append(strategies, auth.NewExternalSecretStrategy([]byte(c.ExternalSecretKey), external))
	}
	return strategies
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.rest.Run(ctx, app.config.EndpointAddrHTTP); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.verifier)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "service", rest.ServiceName)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.users.WaitNotifications()
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
