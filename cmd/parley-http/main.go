// parley-http answers single utterances for the built-in bots, plus any
// PARLEY_CORPUS bot, over HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vthunder/parley/internal/bots"
	"github.com/vthunder/parley/internal/config"
	"github.com/vthunder/parley/internal/extract"
	"github.com/vthunder/parley/internal/httpapi"
	"github.com/vthunder/parley/internal/logging"
)

func main() {
	// Load .env file (optional - won't error if missing)
	_ = godotenv.Load()
	cfg := config.FromEnv()
	if cfg.LogFile != "" {
		defer logging.ToFile(cfg.LogFile).Close()
	}

	provider, closeProvider, err := cfg.OpenProvider()
	if err != nil {
		log.Fatalf("Failed to open embedding provider: %v", err)
	}
	defer closeProvider()

	deps := bots.Deps{
		Tagger:   extract.NewProseTagger(),
		Provider: provider,
		Rand:     bots.NewRand(0),
	}
	defs, err := cfg.LoadBots()
	if err != nil {
		log.Fatalf("Failed to load bots: %v", err)
	}
	routes := make(map[string]httpapi.Bot)
	for name, def := range defs {
		responder, err := bots.NewResponder(def, deps)
		if err != nil {
			log.Fatalf("Failed to build %s: %v", name, err)
		}
		routes[name] = httpapi.Bot{Def: def, Responder: responder}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(routes),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[main] Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[main] HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[main] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] HTTP shutdown failed: %v", err)
	}
}
