package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/JavierTF/tictactoe-project/internal/api"
	"github.com/JavierTF/tictactoe-project/internal/auth"
	"github.com/JavierTF/tictactoe-project/internal/broadcast"
	"github.com/JavierTF/tictactoe-project/internal/config"
	"github.com/JavierTF/tictactoe-project/internal/events"
	"github.com/JavierTF/tictactoe-project/internal/game"
	"github.com/JavierTF/tictactoe-project/internal/storage/memory"
	"github.com/JavierTF/tictactoe-project/internal/storage/sqlite"
	"github.com/JavierTF/tictactoe-project/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Storage: durable SQLite when a path is configured, in-memory
	// otherwise.
	var repo game.Repository
	if cfg.DatabasePath != "" {
		store, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		defer store.Close()
		repo = store
		log.Printf("storage: sqlite at %s", cfg.DatabasePath)
	} else {
		repo = memory.New()
		log.Println("storage: in-memory (set DATABASE_PATH for durability)")
	}

	var publisher game.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("events: %v", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		log.Printf("events: publishing to %s", cfg.NATSURL)
	}

	hub := broadcast.NewHub()
	gameService := game.NewService(repo, hub, publisher, cfg.RepoTimeout)
	authenticator := auth.TokenAuthenticator{}

	mux := http.NewServeMux()
	api.NewHandler(gameService, authenticator).RegisterRoutes(mux)
	ws.NewHandler(gameService, hub, authenticator).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.CORSMiddleware(cfg.AllowedOrigin, mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
