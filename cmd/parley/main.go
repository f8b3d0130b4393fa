package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vthunder/parley/internal/bots"
	"github.com/vthunder/parley/internal/config"
	"github.com/vthunder/parley/internal/conversation"
	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/effectors"
	"github.com/vthunder/parley/internal/extract"
	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/senses"
)

func main() {
	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err == nil {
		log.Println("[config] Loaded .env file")
	}
	cfg := config.FromEnv()
	if cfg.LogFile != "" {
		defer logging.ToFile(cfg.LogFile).Close()
	}

	botName := flag.String("bot", cfg.Bot, "Built-in bot to run (alien or cantina)")
	corpusPath := flag.String("corpus", cfg.Corpus, "Bot definition YAML (overrides -bot)")
	transport := flag.String("transport", cfg.Transport, "Conversation transport (terminal or discord)")
	seed := flag.Int64("seed", 0, "Random seed for reply selection (0 = time based)")
	flag.Parse()

	cfg.Bot = *botName
	cfg.Corpus = *corpusPath
	cfg.Transport = *transport
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	bot, err := cfg.LoadBot()
	if err != nil {
		log.Fatalf("Failed to load bot: %v", err)
	}

	deps := bots.Deps{Rand: bots.NewRand(*seed)}
	if bot.Strategy == corpus.StrategyOverlap {
		provider, closeProvider, err := cfg.OpenProvider()
		if err != nil {
			log.Fatalf("Failed to open embedding provider: %v", err)
		}
		defer closeProvider()
		deps.Provider = provider
		deps.Tagger = extract.NewProseTagger()
	}

	responder, err := bots.NewResponder(bot, deps)
	if err != nil {
		log.Fatalf("Failed to build %s: %v", bot.Name, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		in  conversation.Input
		out conversation.Output
	)
	switch cfg.Transport {
	case config.TransportDiscord:
		sense, err := senses.NewDiscordSense(senses.DiscordConfig{
			Token:     cfg.DiscordToken,
			ChannelID: cfg.DiscordChannel,
			OwnerID:   cfg.DiscordOwner,
		})
		if err != nil {
			log.Fatalf("Failed to create Discord sense: %v", err)
		}
		if err := sense.Start(); err != nil {
			log.Fatalf("Failed to start Discord sense: %v", err)
		}
		defer sense.Stop()

		effector := effectors.NewDiscordEffector(sense.Session(), sense.ChannelID())
		sense.SetPrompter(effector)
		in, out = sense, effector
	default:
		termIn := senses.NewTerminal(os.Stdin, os.Stdout)
		termOut := effectors.NewTerminal(os.Stdout)
		if effectors.ShouldUseColor() {
			termIn.SetStyle(effectors.BotStyle)
			termOut.SetStyle(effectors.BotStyle)
		}
		in, out = termIn, termOut
	}

	profiler, err := cfg.OpenProfiler()
	if err != nil {
		log.Fatalf("Failed to open profiler: %v", err)
	}
	defer profiler.Close()

	log.Printf("[main] Starting %s on %s", bot.Name, cfg.Transport)
	loop := conversation.NewLoop(bots.SessionConfig(bot, deps.Rand), in, out, responder)
	loop.SetProfiler(profiler)
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Conversation failed: %v", err)
	}
	log.Printf("[main] %s finished after %d turns", bot.Name, loop.Turns())
}
