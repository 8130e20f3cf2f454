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

	"github.com/advisia/advisor/internal/config"
	"github.com/advisia/advisor/internal/handler"
	"github.com/advisia/advisor/internal/handler/stream"
	"github.com/advisia/advisor/internal/model/persona"
	"github.com/advisia/advisor/internal/routing"
	"github.com/advisia/advisor/internal/service/ai"
	"github.com/advisia/advisor/internal/service/conversation"
	"github.com/advisia/advisor/internal/service/diagnostic"
	"github.com/advisia/advisor/internal/store"
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

	personaStore := persona.NewMemoryStore(persona.Seed())

	// Session store: redis when configured, otherwise in-memory dev mode
	// in which state does not survive the process.
	var sessions store.Store
	if cfg.Store.RedisAddr != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, cfg.Store.SessionTTL)
		if err != nil {
			log.Printf("warning: redis unavailable, falling back to in-memory sessions: %v", err)
			sessions = store.NewMemoryStore(cfg.Store.SessionTTL)
		} else {
			defer redisStore.Close()
			sessions = redisStore
			log.Printf("session store connected to redis at %s", cfg.Store.RedisAddr)
		}
	} else {
		sessions = store.NewMemoryStore(cfg.Store.SessionTTL)
		log.Println("REDIS_ADDR not set, using in-memory session store (development mode)")
	}

	// Completion service is optional: without it, routing and interviews
	// degrade to local heuristics and scripted fallbacks.
	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize completion service: %v", err)
			log.Println("continuing with keyword routing and scripted replies only")
		} else {
			log.Println("completion service initialized successfully")
		}
	} else {
		log.Println("completion credentials not configured, skipping model initialization")
	}

	ruleRouter := routing.NewRuleRouter(personaStore)
	var routerCompleter routing.Completer
	var serviceCompleter conversation.Completer
	var interviewCompleter diagnostic.Completer
	if aiSvc != nil {
		routerCompleter = aiSvc
		serviceCompleter = aiSvc
		interviewCompleter = aiSvc
	}
	completionRouter := routing.NewCompletionRouter(routerCompleter, personaStore, ruleRouter)
	smartRouter := routing.NewSmartRouter(personaStore, ruleRouter, completionRouter)
	redirector := routing.NewRedirector(personaStore)

	conversations := conversation.NewService(sessions, personaStore, smartRouter, redirector, serviceCompleter)
	interviews := diagnostic.NewService(sessions, interviewCompleter)

	var streamHandler *stream.Handler
	if aiSvc != nil {
		streamHandler = stream.New(aiSvc, sessions, personaStore, redirector)
	}

	router := handler.NewRouter(personaStore, conversations, interviews, streamHandler)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Advisia backend listening on %s", serverCfg.Addr)
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
