package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cjrutherford/tanuki-orchestrator/internal/config"
	"github.com/cjrutherford/tanuki-orchestrator/internal/handler"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/persona"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/profile"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/collector"
	eventsService "github.com/cjrutherford/tanuki-orchestrator/internal/service/events"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/gateway"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/orchestrator"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/prompt"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/summary"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaDir := newPersonaDirectory(cfg.Directory)
	profileDir := newProfileDirectory(cfg.Directory)
	messageCollector := newCollector(cfg.Directory)

	gatewayClient, err := newGatewayClient(ctx, cfg.Gateway)
	if err != nil {
		log.Fatalf("failed to initialize gateway client: %v", err)
	}

	builder := prompt.New(cfg.Gateway.Model, cfg.Gateway.Stream)
	summarizer := summary.New(builder, gatewayClient)
	hub := eventsService.NewHub()

	svc := orchestrator.New(personaDir, profileDir, builder, gatewayClient, summarizer, messageCollector, hub, cfg.Orchestration)

	router := handler.NewRouter(svc, hub)
	startServer(ctx, cfg.Server, router)
}

func newPersonaDirectory(cfg config.DirectoryConfig) persona.Directory {
	if cfg.PersonaURL == "" {
		log.Println("PERSONA_SERVICE_URL not set, using in-memory persona directory")
		return persona.NewMemoryDirectory(persona.Seed(), cfg.StrictMatch)
	}
	return persona.NewHTTPDirectory(cfg.PersonaURL, cfg.Timeout, cfg.StrictMatch)
}

func newProfileDirectory(cfg config.DirectoryConfig) profile.Directory {
	if cfg.ProfileURL == "" {
		log.Println("PROFILE_SERVICE_URL not set, using in-memory profile directory")
		return profile.NewMemoryDirectory(nil)
	}
	return profile.NewHTTPDirectory(cfg.ProfileURL, cfg.Timeout)
}

func newCollector(cfg config.DirectoryConfig) collector.Client {
	if cfg.CollectorURL == "" {
		log.Println("COLLECTOR_SERVICE_URL not set, using in-memory message collector")
		return &collector.MemoryClient{}
	}
	return collector.NewHTTPClient(cfg.CollectorURL, cfg.Timeout)
}

func newGatewayClient(ctx context.Context, cfg config.GatewayConfig) (gateway.Client, error) {
	if cfg.Provider == "ark" {
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, err
		}
		log.Printf("gateway provider: ark model=%s", cfg.Model)
		return gateway.NewEinoClient(chatModel, cfg.Timeout), nil
	}

	log.Printf("gateway provider: http base=%s model=%s", cfg.BaseURL, cfg.Model)
	return gateway.NewHTTPClient(cfg.BaseURL, cfg.Timeout, cfg.MaxRetries), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("conversation orchestrator listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
