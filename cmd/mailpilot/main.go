package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot/internal/ai"
	"github.com/mailpilot/mailpilot/internal/chat"
	"github.com/mailpilot/mailpilot/internal/config"
	"github.com/mailpilot/mailpilot/internal/google"
	"github.com/mailpilot/mailpilot/internal/server"
	"github.com/mailpilot/mailpilot/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info().Str("ai_provider", cfg.AI.Provider).Msg("Mailpilot starting up")

	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.Lifetime)
	oauth := google.NewOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI, logger)

	assistant, err := ai.NewService(&cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create AI service")
	}

	mailboxes := func(ctx context.Context, accessToken, refreshToken string) (server.Mailbox, error) {
		return oauth.Mailbox(ctx, accessToken, refreshToken)
	}

	router := chat.NewRouter(logger)
	srv := server.NewServer(&cfg.Server, codec, oauth, assistant, mailboxes, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.New(os.Stderr)
	if os.Getenv("ENVIRONMENT") == "development" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return out.Level(lvl).With().Timestamp().Logger()
}
