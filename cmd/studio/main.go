package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"photostudio/internal/editor"
	"photostudio/internal/http/handlers"
	"photostudio/internal/http/httpapi"
	"photostudio/internal/infra"
	"photostudio/internal/studio"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Edit backend: real Gemini client when a key is configured, otherwise
	// the deterministic stub so the whole flow works offline.
	var ed editor.Editor
	if cfg.GeminiAPIKey != "" {
		client, err := editor.NewClient(editor.Options{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure edit client")
		}
		ed = client
		logger.Info().Str("model", client.Model()).Msg("using Gemini edit backend")
	} else {
		ed = editor.NewStub()
		logger.Warn().Msg("GEMINI_API_KEY not set; using synthetic edit backend")
	}

	sessions := studio.NewStore(ed, cfg.SessionTTL, logger)
	if err := sessions.StartJanitor(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start session janitor")
	}
	defer sessions.StopJanitor()

	app := handlers.NewApp(cfg, logger, sessions)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("studio listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
