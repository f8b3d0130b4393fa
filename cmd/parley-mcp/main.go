// parley-mcp serves the chatbot operations as MCP tools over stdio.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/parley/internal/bots"
	"github.com/vthunder/parley/internal/config"
	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/extract"
	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/mcp/tools"
)

func main() {
	// Load .env file - try executable's parent dir (repo root), then exe dir, then cwd
	envPaths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		envPaths = append([]string{
			filepath.Join(filepath.Dir(exeDir), ".env"),
			filepath.Join(exeDir, ".env"),
		}, envPaths...)
	}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
	cfg := config.FromEnv()
	if cfg.LogFile != "" {
		defer logging.ToFile(cfg.LogFile).Close()
	}

	deps := &tools.Dependencies{}

	alienBot, err := cfg.LoadFor(corpus.StrategyRegex, "alien")
	if err != nil {
		fatal("load alien: %v", err)
	}
	if deps.Alien, err = bots.NewAlien(alienBot, nil); err != nil {
		fatal("build alien: %v", err)
	}
	deps.AlienFallback = alienBot.Fallback

	cantinaBot, err := cfg.LoadFor(corpus.StrategyOverlap, "cantina")
	if err != nil {
		fatal("load cantina: %v", err)
	}
	provider, closeProvider, err := cfg.OpenProvider()
	if err != nil {
		fatal("open embedding provider: %v", err)
	}
	defer closeProvider()
	if deps.Cantina, err = bots.NewCantina(cantinaBot, extract.NewProseTagger(), provider); err != nil {
		fatal("build cantina: %v", err)
	}
	deps.CantinaFallback = cantinaBot.Fallback

	s := tools.NewServer(deps)
	logging.Info("parley-mcp", "Serving MCP tools on stdio")
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
